package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"stockledger/internal/audit"
	auditrepo "stockledger/internal/audit/repository"
	"stockledger/internal/catalog"
	catalogrepo "stockledger/internal/catalog/repository"
	"stockledger/internal/commons"
	"stockledger/internal/config"
	"stockledger/internal/ident"
	"stockledger/internal/infrastructure/logger"
	"stockledger/internal/infrastructure/mysql"
	"stockledger/internal/invoice"
	"stockledger/internal/lpo"
	"stockledger/internal/party"
	"stockledger/internal/sale"
	"stockledger/internal/server"
	"stockledger/internal/supply"
	supplyrepo "stockledger/internal/supply/repository"
)

func main() {
	cfg, err := commons.LoadConfig("internal/config/config.yaml")
	if err != nil {
		cfg, err = config.Load()
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	engine := supply.NewEngine(
		catalogrepo.NewMySQLProductRepository(db),
		supplyrepo.NewMySQLStockEntryRepository(db),
		zapLogger,
	)
	numbers := ident.New()
	recorder := audit.NewRecorder(auditrepo.NewMySQLAuditLogRepository(db), zapLogger)

	catalogCtrl := catalog.NewModule(db, cfg, zapLogger, engine, recorder)
	saleCtrl := sale.NewModule(db, cfg, zapLogger, engine, numbers, recorder)
	invoiceCtrl := invoice.NewModule(db, cfg, zapLogger, numbers, recorder)
	lpoCtrl := lpo.NewModule(db, cfg, zapLogger, engine, numbers, recorder)
	partyCtrl := party.NewModule(db, zapLogger)

	router := server.NewRouter(
		catalogCtrl, saleCtrl, invoiceCtrl, lpoCtrl, partyCtrl,
		[]byte(cfg.Auth.JWTSecret), zapLogger,
	)

	srv := server.New(cfg.Server.Port, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
