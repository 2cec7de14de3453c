package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leisuretimez/config"
	"leisuretimez/internal/database"
	"leisuretimez/internal/router"
	"leisuretimez/internal/ws"
	"leisuretimez/pkg/cache"
	"leisuretimez/pkg/cloudinary"
	"leisuretimez/pkg/mailer"
	"leisuretimez/pkg/payment"
	"leisuretimez/pkg/pdfshift"

	log "github.com/sirupsen/logrus"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if lvl, err := log.ParseLevel(cfg.Server.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	}

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if err := database.SeedAdmin(db, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	var gateway payment.Gateway
	if cfg.Stripe.SecretKey != "" {
		gateway = payment.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
	} else {
		log.Warn("STRIPE_SECRET_KEY not set, using the stub payment gateway")
		gateway = payment.NewStubGateway()
	}

	deps := router.Deps{
		Counter: cache.New(cfg.Redis.URL),
		Gateway: gateway,
		Mailer:  mailer.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From),
		PDF:     pdfshift.NewClient(cfg.PDFShift.APIKey, cfg.PDFShift.Endpoint, cfg.PDFShift.Timeout),
		Hub:     ws.NewHub(),
	}
	if cfg.Cloudinary.CloudName != "" {
		cloud, err := cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret, cfg.Cloudinary.Folder)
		if err != nil {
			log.Fatalf("cloudinary: %v", err)
		}
		deps.Images = cloud
	} else {
		log.Warn("cloudinary not configured, image uploads are disabled")
	}

	engine := router.Setup(cfg, db, deps)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Infof("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown: %v", err)
	}
	log.Info("server stopped")
}
