package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// GeminiClient implements Summarizer against the Gemini generateContent API.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGeminiClient builds a client. baseURL is overridable for tests; pass ""
// for the production endpoint.
func NewGeminiClient(apiKey, model, baseURL string) *GeminiClient {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// SummarizeComments builds the fixed prompt (sentiment, key points, comment
// count) over the movie's comments and performs a single generateContent
// call.
func (c *GeminiClient) SummarizeComments(ctx context.Context, movieTitle string, comments []CommentInput) (string, error) {
	prompt := buildSummaryPrompt(movieTitle, comments)

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", &UpstreamError{Service: "gemini", Err: err}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &UpstreamError{Service: "gemini", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &UpstreamError{Service: "gemini", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &UpstreamError{
			Service: "gemini",
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("unexpected status"),
		}
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &UpstreamError{Service: "gemini", Err: fmt.Errorf("decode response: %w", err)}
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", &UpstreamError{Service: "gemini", Err: fmt.Errorf("empty response")}
	}

	return strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text), nil
}

func buildSummaryPrompt(movieTitle string, comments []CommentInput) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Resuma os comentários do filme %q feitos pelos usuários.\n", movieTitle)
	fmt.Fprintf(&sb, "Há %d comentário(s) no total. Destaque o sentimento geral (positivo, negativo ou misto), os principais pontos levantados e mencione a quantidade de comentários.\n", len(comments))
	sb.WriteString("Responda em português, em um único parágrafo.\n\nComentários:\n")
	for _, c := range comments {
		fmt.Fprintf(&sb, "- (%d curtidas) %s\n", c.Likes, c.Text)
	}
	return sb.String()
}
