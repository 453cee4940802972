//	@title			File Gateway API
//	@version		1.0
//	@description	Stages uploads on local disk, relays them to S3-compatible object storage and streams them back as attachments.
//
//	@host		localhost:3000
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token, required only when the gateway runs with JWT_SECRET. Format: **Bearer {token}**

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/radif/filegateway/internal/config"
	"github.com/radif/filegateway/internal/db"
	"github.com/radif/filegateway/internal/file"
	"github.com/radif/filegateway/internal/router"
	"github.com/radif/filegateway/internal/staging"
	"github.com/radif/filegateway/internal/storage"
)

func main() {
	cfg := config.Load()

	addr, secure, err := cfg.StorageAddr()
	if err != nil {
		log.Fatalf("invalid storage endpoint: %v", err)
	}
	log.Printf("storage endpoint: %s (tls=%t, bucket=%s)", addr, secure, cfg.BucketName)

	store, err := storage.NewMinioStorage(addr, cfg.AccessKey, cfg.SecretKey, cfg.BucketName, secure)
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}

	// The ledger is optional; without DATABASE_URL uploads are not recorded.
	var ledger file.Ledger
	if cfg.LedgerEnabled() {
		pool, err := db.Connect(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		defer pool.Close()

		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatalf("database migration failed: %v", err)
		}
		ledger = file.NewRepository(pool)
	}

	// Wire dependencies: storage + staging → service → handler
	stg := staging.NewStore(cfg.UploadDir)
	log.Printf("staging uploads under %s", stg.Root())
	fileSvc := file.NewService(store, stg, ledger)
	fileHandler := file.NewHandler(fileSvc)

	// No read/write timeouts: uploads and downloads stream for as long as the backend takes.
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(cfg, fileHandler),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on %s (env=%s, auth=%t, ledger=%t)",
			cfg.HTTPAddr, cfg.AppEnv, cfg.AuthEnabled(), cfg.LedgerEnabled())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}
