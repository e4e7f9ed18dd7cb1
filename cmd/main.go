package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"voyago/backend/internal/api/handler"
	"voyago/backend/internal/auth"
	"voyago/backend/internal/chatfeed"
	"voyago/backend/internal/config"
	"voyago/backend/internal/localization"
	"voyago/backend/internal/notify"
	"voyago/backend/internal/profile"
	"voyago/backend/internal/questionnaire"
	"voyago/backend/internal/storage"
	"voyago/backend/internal/wishlist"
)

func setupDependencies(cfg *config.Config, log zerolog.Logger) *storage.Service {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect PostgreSQL")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect Redis")
	}

	store := storage.NewService(db, rdb)
	if err := store.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	log.Info().Msg("database and Redis connections established, migrations complete")
	return store
}

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()
	log.Info().Msg("starting Voyago backend")

	cfg := config.Load()
	store := setupDependencies(cfg, log)

	localizer, err := localization.NewLocalizer(os.Getenv("LOCALE_DIR"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load notice catalogs")
	}

	notifier, err := notify.New(cfg.TelegramBotToken, cfg.TelegramChatID, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start telegram notifier")
	}

	authSvc := auth.NewService(store, []byte(cfg.JWTSecret), log)
	profiles := profile.NewResolver(store, log)
	chat := chatfeed.NewService(store, profiles, log)
	hub := chatfeed.NewHub(store, log)
	assigner := chatfeed.NewAssigner(store, chat, log)
	wishlists := wishlist.NewService(store, log)
	questionnaires := questionnaire.NewService(store, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	h := &handler.Handler{
		Store:          store,
		Auth:           authSvc,
		Chat:           chat,
		Hub:            hub,
		Assigner:       assigner,
		Wishlists:      wishlists,
		Questionnaires: questionnaires,
		Notifier:       notifier,
		Localizer:      localizer,
		JWTSecret:      []byte(cfg.JWTSecret),
		Log:            log,
	}
	h.Routes(r)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Info().Str("port", cfg.Port).Msg("listening")
	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
