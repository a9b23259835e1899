package integration_test

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http/httptest"
	"os"
	"time"

	"github.com/cinex/seat-reservation-engine/internal/app"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
)

type TestApp struct {
	App *app.Application
	DB  *pgxpool.Pool
}

type BaseSuite struct {
	suite.Suite
	app            *TestApp
	dbContainer    *PostgresContainer
	cacheContainer *RedisContainer
	server         *httptest.Server
	stopSweep      context.CancelFunc
}

func (s *BaseSuite) SetupSuite() {
	ctx := context.Background()

	postgresContainer, err := getDbContainer(ctx)
	if err != nil {
		log.Printf("failed to start container: %s", err)
		return
	}

	redisContainer, err := getCacheContainer(ctx)
	if err != nil {
		log.Printf("failed to start container: %s", err)
		return
	}

	s.dbContainer = postgresContainer
	s.cacheContainer = redisContainer

	cfg := app.Config{
		Port: 3000,
		Env:  "test",
		DB: app.DBConfig{
			DSN:          postgresContainer.ConnectionString,
			MaxOpenConns: 25,
			MaxIdleTime:  2 * time.Minute,
		},
		Redis: app.RedisConfig{
			URL:          redisContainer.ConnectionString,
			MaxOpenConns: 10,
			MaxIdleConns: 10,
			MaxIdleTime:  2 * time.Minute,
		},
		Hold: app.HoldConfig{
			TTL:           5 * time.Minute,
			SweepInterval: time.Second,
		},
		Payment: app.PaymentConfig{
			Provider:      "mock",
			ChargeTimeout: 5 * time.Second,
			Currency:      "usd",
		},
	}

	testApp, err := newTestApp(ctx, cfg)
	if err != nil {
		log.Printf("cannot initialize app: %s", err)
		return
	}

	s.app = testApp
	s.server = httptest.NewServer(testApp.App.Routes())

	sweepCtx, stopSweep := context.WithCancel(ctx)
	s.stopSweep = stopSweep
	go testApp.App.Sweeper().Run(sweepCtx)
}

func (s *BaseSuite) TearDownSuite() {
	if s.stopSweep != nil {
		s.stopSweep()
	}
	if s.server != nil {
		s.server.Close()
	}
	if s.app != nil {
		s.app.DB.Close()
		s.app.App.Close()
	}
	if s.dbContainer != nil {
		if err := testcontainers.TerminateContainer(s.dbContainer.Container.Container); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}
	if s.cacheContainer != nil {
		if err := testcontainers.TerminateContainer(s.cacheContainer.Container); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}
}

func newTestApp(ctx context.Context, cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if os.Getenv("INTEGRATION_LOGS") != "" {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		return nil, err
	}

	// A separate pool for seeding fixtures and inspecting state.
	db, err := pgxpool.New(ctx, cfg.DB.DSN)
	if err != nil {
		application.Close()
		return nil, err
	}

	return &TestApp{App: application, DB: db}, nil
}
