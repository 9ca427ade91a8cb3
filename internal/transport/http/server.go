package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"time"

	"cinematch/internal/cache"
	"cinematch/internal/config"
	"cinematch/internal/database"
	"cinematch/internal/handler"
	"cinematch/internal/provider"
	appredis "cinematch/internal/redis"
	"cinematch/internal/repository"
	"cinematch/internal/service"
	"cinematch/internal/transport/http/middleware"
)

func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// 3. Redis is optional; without it the summary cache is simply skipped.
	var summaryCache cache.SummaryCache
	if cfg.RedisURL != "" {
		redisClient, err := appredis.Connect(context.Background(), cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()
		summaryCache = cache.NewSummaryCache(redisClient, time.Duration(cfg.SummaryCacheTTL)*time.Second)
		log.Println("Summary cache enabled (redis)")
	} else {
		log.Println("REDIS_URL not set, summary cache disabled")
	}

	// 4. Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	followRepo := repository.NewFollowRepository(db)
	movieRepo := repository.NewMovieRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	communityRepo := repository.NewCommunityRepository(db)
	chatRepo := repository.NewChatRepository(db)
	eventRepo := repository.NewEventRepository(db)

	// 5. Outbound providers
	summarizer := provider.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, "")

	// 6. Services
	authService := service.NewAuthService(refreshTokenRepo, cfg)
	userService := service.NewUserService(userRepo, followRepo, engagementRepo, commentRepo, movieRepo)
	followService := service.NewFollowService(followRepo, userRepo)
	movieService := service.NewMovieService(movieRepo)
	engagementService := service.NewEngagementService(engagementRepo, movieRepo, db)
	forumService := service.NewForumService(commentRepo, movieRepo, summarizer, summaryCache, db)
	communityService := service.NewCommunityService(communityRepo, chatRepo, userRepo, db)
	eventService := service.NewEventService(eventRepo, userRepo)

	mediaService, err := service.NewMediaService(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create media service: %w", err)
	}

	// 7. Handlers
	routerCfg := RouterConfig{
		AuthHandler:      handler.NewAuthHandler(userService, authService),
		UserHandler:      handler.NewUserHandler(userService, mediaService),
		FollowHandler:    handler.NewFollowHandler(followService),
		MovieHandler:     handler.NewMovieHandler(movieService, engagementService, forumService, userService),
		ForumHandler:     handler.NewForumHandler(forumService, userService),
		CommunityHandler: handler.NewCommunityHandler(communityService, mediaService),
		EventHandler:     handler.NewEventHandler(eventService),
		JWTSecret:        cfg.JWTSecret,
	}
	if cfg.RateLimitEnabled {
		routerCfg.RateLimit = middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	router := NewRouter(routerCfg)

	addr := ":" + cfg.ServerPort
	log.Printf("Starting server on %s", addr)
	return stdhttp.ListenAndServe(addr, router)
}
