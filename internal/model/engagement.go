package model

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/google/uuid"
)

// EngagementAction is the single per-user-per-movie record of like /
// favorite / watch-later / watched / rating state. Exactly one row exists
// per (user, movie) pair; it is created lazily on first interaction and
// mutated in place afterwards.
type EngagementAction struct {
	ID         int64      `db:"id" json:"-"`
	UserID     uuid.UUID  `db:"user_id" json:"-"`
	MovieID    uuid.UUID  `db:"movie_id" json:"-"`
	Like       *int       `db:"like_vote" json:"like"` // 0 = dislike, 1 = like, null = unset
	Favorite   bool       `db:"favoritado" json:"favoritado"`
	WatchLater bool       `db:"assistir_mais_tarde" json:"assistir_mais_tarde"`
	Watched    bool       `db:"assistido" json:"assistido"`
	Rating     *float64   `db:"avaliacao" json:"avaliacao"` // 0-10
}

// EngagementUpdate carries the fields present in a partial update. A nil
// field means "not sent, leave unchanged". Malformed or out-of-range numeric
// values are dropped during decoding, never surfaced as errors: the original
// API swallows them and leaves the field untouched.
type EngagementUpdate struct {
	Like       *int
	Favorite   *bool
	WatchLater *bool
	Watched    *bool
	Rating     *float64
}

// HasRating reports whether this update carries a valid rating. Only updates
// for which this is true trigger the aggregate re-scan.
func (u EngagementUpdate) HasRating() bool {
	return u.Rating != nil
}

// IsEmpty reports whether no field survived decoding.
func (u EngagementUpdate) IsEmpty() bool {
	return u.Like == nil && u.Favorite == nil && u.WatchLater == nil &&
		u.Watched == nil && u.Rating == nil
}

// UnmarshalJSON decodes the update leniently, field by field. A field that
// is absent stays nil; a field that is present but malformed or out of range
// also stays nil. Booleans follow the original's truthiness rules so that
// clients sending 1/"x" instead of true keep working.
func (u *EngagementUpdate) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if v, ok := raw["like"]; ok {
		if n, ok := decodeLenientInt(v); ok && (n == 0 || n == 1) {
			u.Like = &n
		}
	}
	if v, ok := raw["favoritado"]; ok {
		if b, ok := decodeLenientBool(v); ok {
			u.Favorite = &b
		}
	}
	if v, ok := raw["assistir_mais_tarde"]; ok {
		if b, ok := decodeLenientBool(v); ok {
			u.WatchLater = &b
		}
	}
	if v, ok := raw["assistido"]; ok {
		if b, ok := decodeLenientBool(v); ok {
			u.Watched = &b
		}
	}
	if v, ok := raw["avaliacao"]; ok {
		if f, ok := decodeLenientFloat(v); ok && f >= 0 && f <= 10 {
			u.Rating = &f
		}
	}
	return nil
}

// decodeLenientInt accepts a JSON number or a numeric string.
func decodeLenientInt(raw json.RawMessage) (int, bool) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
	}
	return 0, false
}

// decodeLenientFloat accepts a JSON number or a numeric string.
func decodeLenientFloat(raw json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// decodeLenientBool accepts a JSON bool and falls back to truthiness for
// numbers and strings, mirroring the original's coercion.
func decodeLenientBool(raw json.RawMessage) (bool, bool) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, true
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f != 0, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s != "", true
	}
	return false, false
}

// RateRequest is the body of the direct-rating endpoint.
type RateRequest struct {
	Nota float64 `json:"nota"`
}

// RateResponse mirrors the original wire shape.
type RateResponse struct {
	NotaMedia  float64 `json:"nota_media"`
	TotalVotos int     `json:"total_votos"`
	SuaNota    float64 `json:"sua_nota"`
}

// WatchlistFilter selects which engagement flag a profile movie listing
// filters on.
const (
	FilterWatched    = "assistidos"
	FilterFavorites  = "favoritos"
	FilterWatchLater = "assistir_depois"
)

// ErrInvalidFilter rejects a filtro value outside the three flags above.
var ErrInvalidFilter = errors.New("invalid filter")
