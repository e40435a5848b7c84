package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"jengabiashara/internal/chat"
	"jengabiashara/internal/credentials"
	"jengabiashara/internal/http/handlers"
	"jengabiashara/internal/http/httpapi"
	"jengabiashara/internal/infra"
	"jengabiashara/internal/infra/geoip"
	"jengabiashara/internal/middleware"
	"jengabiashara/internal/providers/gemini"
	"jengabiashara/internal/workspace"
)

func main() {
	// Load .env (optional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Gemini client for image editing and the advisor chat; the Veo client
	// authenticates per workspace so it is built without a key here.
	client, err := gemini.New(ctx, gemini.Options{
		APIKey:     cfg.GeminiAPIKey,
		ImageModel: cfg.GeminiImageModel,
		ChatModel:  cfg.GeminiChatModel,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize gemini client")
	}
	videos := gemini.NewVideoClient(gemini.VideoOptions{
		Model:        cfg.VeoModel,
		PollInterval: cfg.VideoPollInterval,
		PollCeiling:  cfg.VideoPollCeiling,
		Logger:       logger,
	})

	creds := credentials.NewStore()
	workspaces := workspace.NewStore(cfg.SessionTTL, workspace.Providers{
		Images: client,
		Videos: videos,
		NewStreamer: func(ctx context.Context) (chat.Streamer, error) {
			return client.NewChat(ctx)
		},
	}, creds.Revoke, logger)

	// GeoIP is optional; without a database the market middleware falls back
	// to request headers.
	var countryLookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		defer resolver.Close()
		countryLookup = resolver.CountryCode
	}

	app := handlers.NewApp(cfg, logger, workspaces, creds)
	router := httpapi.NewRouter(app, httpapi.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		CountryLookup:  countryLookup,
		RateLimit:      cfg.RateLimitPerMin,
		DefaultLocale:  cfg.DefaultLocale,
	})
	server := infra.NewHTTPServer(cfg, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
	logger.Info().Msg("server stopped")
}
