package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yeremiapane/food-delivery/config"
	"github.com/yeremiapane/food-delivery/controllers"
	"github.com/yeremiapane/food-delivery/database"
	"github.com/yeremiapane/food-delivery/events"
	"github.com/yeremiapane/food-delivery/kds"
	"github.com/yeremiapane/food-delivery/router"
	"github.com/yeremiapane/food-delivery/storage"
	"github.com/yeremiapane/food-delivery/telemetry"
	"github.com/yeremiapane/food-delivery/tokenstore"
	"github.com/yeremiapane/food-delivery/utils"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func newRevoker(ctx context.Context, cfg *config.Config) (tokenstore.Revoker, func(), error) {
	if cfg.RedisURL == "" {
		return tokenstore.NewMemory(), func() {}, nil
	}
	client, err := tokenstore.Dial(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	utils.InfoLogger.Println("Session revocations kept in Redis")
	return tokenstore.NewRedis(client), func() { client.Close() }, nil
}

func newPublisher(cfg *config.Config, hub *kds.Hub) (events.Publisher, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		return events.Multi{hub}, func() {}, nil
	}
	kp, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		return nil, nil, err
	}
	utils.InfoLogger.Printf("Publishing order events to Kafka topic %s", cfg.KafkaTopic)
	return events.Multi{hub, kp}, func() { kp.Close() }, nil
}

// newStore returns the image store and the directory to serve at /uploads,
// empty when images live in S3.
func newStore(ctx context.Context, cfg *config.Config) (storage.Store, string, error) {
	if cfg.S3Bucket != "" {
		s, err := storage.NewS3Store(ctx, cfg.S3Bucket, cfg.S3Region)
		return s, "", err
	}
	s, err := storage.NewLocalStore(cfg.UploadDir, cfg.PublicURL)
	return s, cfg.UploadDir, err
}

func serve(ctx context.Context, cfg *config.Config) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	tp, err := telemetry.Setup(ctx, telemetry.Options{Exporter: cfg.TracingExporter, Endpoint: cfg.OTLPEndpoint})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			utils.ErrorLogger.Printf("telemetry shutdown: %v", err)
		}
	}()

	revoker, closeRevoker, err := newRevoker(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRevoker()

	hub := kds.NewHub()
	publisher, closePublisher, err := newPublisher(cfg, hub)
	if err != nil {
		return err
	}
	defer closePublisher()

	store, uploadDir, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}

	r := router.SetupRouter(router.Deps{
		DB:          db,
		Revoker:     revoker,
		Store:       store,
		Publisher:   publisher,
		Hub:         hub,
		Cookie:      controllers.CookieConfig{Name: cfg.CookieName, Secure: cfg.CookieSecure},
		CORSOrigins: cfg.CORSOrigins,
		UploadDir:   uploadDir,
		LoginRate:   cfg.LoginRate,
		LoginBurst:  cfg.LoginBurst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           tp.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	utils.InfoLogger.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
