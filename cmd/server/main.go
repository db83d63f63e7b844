package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/investfolio-backend/internal/adapter/grpc"
	"github.com/simaogato/investfolio-backend/internal/adapter/price"
	"github.com/simaogato/investfolio-backend/internal/adapter/repository/memory"
	"github.com/simaogato/investfolio-backend/internal/adapter/repository/sqlrepo"
	"github.com/simaogato/investfolio-backend/internal/auth"
	"github.com/simaogato/investfolio-backend/internal/config"
	"github.com/simaogato/investfolio-backend/internal/domain"
	"github.com/simaogato/investfolio-backend/internal/logger"
	"github.com/simaogato/investfolio-backend/internal/usecase/history"
	"github.com/simaogato/investfolio-backend/internal/usecase/ledger"
	"github.com/simaogato/investfolio-backend/internal/usecase/position"
	"github.com/simaogato/investfolio-backend/internal/usecase/seeder"
	"github.com/simaogato/investfolio-backend/internal/usecase/valuation"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Init(cfg.LogLevel)

	ctx := context.Background()

	// 2. Initialize Repositories
	holdingRepo, operationRepo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.L.Error("failed to open store", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// 3. Initialize Price Provider
	prices, err := newPriceService(cfg)
	if err != nil {
		logger.L.Error("failed to create price provider", "provider", cfg.PriceProvider, "error", err)
		os.Exit(1)
	}

	// 4. Initialize Services (Use Cases)
	ledgerService := ledger.NewLedgerService(holdingRepo, operationRepo)
	positionService := position.NewPositionService(holdingRepo, operationRepo)
	valuationService := valuation.NewValuationService(holdingRepo, operationRepo, prices)
	historyService := history.NewHistoryService(holdingRepo, operationRepo, prices)

	if cfg.SeedDemoOwner != nil {
		if err := seeder.NewDemoSeeder(holdingRepo).Seed(ctx, *cfg.SeedDemoOwner); err != nil {
			logger.L.Error("failed to seed demo holdings", "error", err)
			os.Exit(1)
		}
	}

	// 5. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpcadapter.UnaryInterceptors(auth.NewTokenService(cfg.JWTSecret)),
	)

	grpcAdapter := grpcadapter.NewServer(ledgerService, positionService, valuationService, historyService)
	grpcadapter.RegisterInvestmentServiceServer(grpcServer, grpcAdapter)

	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCPort)
	if err != nil {
		logger.L.Error("failed to listen", "addr", cfg.GRPCPort, "error", err)
		os.Exit(1)
	}

	// Start server in a goroutine
	go func() {
		logger.L.Info("gRPC server listening", "addr", cfg.GRPCPort, "db_driver", cfg.DBDriver, "price_provider", cfg.PriceProvider)
		if err := grpcServer.Serve(lis); err != nil {
			logger.L.Error("failed to serve gRPC server", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	waitForShutdown(grpcServer)
}

// openStore connects the configured store and returns its repositories and a close func
func openStore(ctx context.Context, cfg *config.Config) (domain.HoldingRepository, domain.OperationRepository, func(), error) {
	switch cfg.DBDriver {
	case config.DriverMemory:
		store := memory.NewStore()
		return store.Holdings(), store.Operations(), func() {}, nil
	case config.DriverPostgres, config.DriverSQLite:
		dsn := cfg.DBConnStr
		if cfg.DBDriver == config.DriverSQLite {
			dsn = cfg.SQLitePath
		}

		db, err := connectWithRetry(ctx, cfg.DBDriver, dsn)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, nil, err
		}

		closeDB := func() {
			if err := db.Close(); err != nil {
				logger.L.Warn("failed to close database", "error", err)
			}
		}
		return sqlrepo.NewHoldingRepository(db), sqlrepo.NewOperationRepository(db), closeDB, nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// connectWithRetry gives a freshly started Postgres container a few seconds to accept connections
func connectWithRetry(ctx context.Context, driver, dsn string) (*sqlrepo.DB, error) {
	const attempts = 5

	var lastErr error
	for i := 1; i <= attempts; i++ {
		db, err := sqlrepo.NewDB(driver, dsn)
		if err == nil {
			return db, nil
		}
		lastErr = err
		logger.L.Warn("database not ready", "attempt", i, "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(i) * time.Second):
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, lastErr)
}

func newPriceService(cfg *config.Config) (domain.PriceService, error) {
	if cfg.PriceProvider == config.PriceProviderNone {
		return price.None{}, nil
	}
	client, err := price.NewYahooClient(price.YahooOptions{
		BaseURL:   cfg.YahooBaseURL,
		Timeout:   cfg.HTTPClientTimeout,
		CacheTTL:  cfg.PriceCacheTTL,
		RateLimit: cfg.PriceRateLimit,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(grpcServer *grpclib.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.L.Info("shutting down gracefully", "signal", sig.String())

	grpcServer.GracefulStop()
	logger.L.Info("gRPC server stopped")
}
