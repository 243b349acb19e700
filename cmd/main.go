package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dermai-app/dermai-server/internal/ai"
	"github.com/dermai-app/dermai-server/internal/api/http/router"
	httpServer "github.com/dermai-app/dermai-server/internal/api/http/server"
	"github.com/dermai-app/dermai-server/internal/config"
	"github.com/dermai-app/dermai-server/internal/logger"
	"github.com/dermai-app/dermai-server/internal/model"
	"github.com/dermai-app/dermai-server/internal/repository/postgres"
	"github.com/dermai-app/dermai-server/internal/server"
	"github.com/dermai-app/dermai-server/internal/service"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	ledgerRepo := postgres.NewLedgerRepository(db)

	sessionService := service.NewSession(sessionRepo, logger)
	ledgerService := service.NewLedger(ledgerRepo, logger)
	authService := service.NewAuth(userRepo, sessionService, ledgerService, cfg.Credits.SignupBonus, logger)
	queryService := service.NewQuery(ledgerRepo, logger)
	packagesService := service.NewPackages(ledgerService, logger)
	meterService := service.NewMeter(ledgerService, ai.NewStubGenerator(), cfg.Credits, logger)

	r := router.New(authService, sessionService, ledgerService, queryService,
		packagesService, meterService, cfg.API.Key, logger)
	app := r.Register()
	srv := httpServer.NewHTTPServer(app, fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer

	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		err := s.Start(sl)
		if err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
