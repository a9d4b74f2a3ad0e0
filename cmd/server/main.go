package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"videotube/cmd/config"
	"videotube/pkg/auth"
	"videotube/pkg/database"
	"videotube/pkg/handlers"
	"videotube/pkg/logging"
	"videotube/pkg/media"
	"videotube/pkg/mongodb"
	"videotube/pkg/s3"
	"videotube/pkg/server"
	"videotube/pkg/services"
	"videotube/pkg/store"
)

func openStore(ctx context.Context, cfg config.DatabaseConfig) (store.Store, error) {
	switch cfg.Driver {
	case "mongo":
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		s, err := mongodb.Open(connectCtx, cfg.URI, cfg.Name)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite3", "postgres":
		s, err := database.Open(cfg.Driver, cfg.URI)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

func mediaHost(cfg *config.Config) (*media.Host, error) {
	if !cfg.MediaEnabled() {
		log.Warn().Msg("No S3 bucket configured, media uploads are disabled")
		return media.NewHost(nil, nil, cfg.Media.TempDir), nil
	}
	uploader, err := s3.NewUploader(s3.Config{
		Region:   cfg.AWS.Region,
		Bucket:   cfg.AWS.S3Bucket,
		Endpoint: cfg.AWS.Endpoint,
	})
	if err != nil {
		return nil, err
	}
	return media.NewHost(uploader, media.FFProbe{Path: cfg.Media.FFProbePath}, cfg.Media.TempDir), nil
}

func run() error {
	cfg, err := config.Load("cmd/config/")
	if err != nil {
		return err
	}
	if err := logging.Setup(logging.Options{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Service:     "videotube",
		Environment: cfg.Log.Environment,
	}, os.Stdout); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize the database
	db, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(closeCtx); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()
	log.Info().Str("driver", cfg.Database.Driver).Msg("Database connected")

	host, err := mediaHost(cfg)
	if err != nil {
		return err
	}

	tokens := auth.NewTokens(auth.Config{
		AccessSecret:  cfg.Auth.AccessTokenSecret,
		RefreshSecret: cfg.Auth.RefreshTokenSecret,
		AccessTTL:     cfg.Auth.AccessTokenExpiry,
		RefreshTTL:    cfg.Auth.RefreshTokenExpiry,
	}, db)

	h := handlers.New(handlers.Services{
		Users:         services.NewUserService(db, tokens, host),
		Videos:        services.NewVideoService(db, host),
		Comments:      services.NewCommentService(db),
		Tweets:        services.NewTweetService(db),
		Likes:         services.NewLikeService(db),
		Subscriptions: services.NewSubscriptionService(db),
		Playlists:     services.NewPlaylistService(db),
		Dashboard:     services.NewDashboardService(db),
	}, tokens, db, db, handlers.CookieConfig{
		Secure:     cfg.Server.CookieSecure,
		AccessTTL:  cfg.Auth.AccessTokenExpiry,
		RefreshTTL: cfg.Auth.RefreshTokenExpiry,
	})

	srvCfg := server.Config{
		Port:            cfg.Server.Port,
		Mode:            cfg.Server.Mode,
		CORSOrigins:     cfg.Server.CORSOrigins,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}
	return server.Run(ctx, srvCfg, server.Engine(srvCfg, h))
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
