package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/cinex/seat-reservation-engine/internal/domain"
	"github.com/cinex/seat-reservation-engine/internal/notify"
	"github.com/cinex/seat-reservation-engine/internal/payment"
	"github.com/cinex/seat-reservation-engine/internal/repository"
	"github.com/cinex/seat-reservation-engine/internal/reservation"
	appvalidator "github.com/cinex/seat-reservation-engine/internal/validator"
	"github.com/cinex/seat-reservation-engine/internal/vcs"
	"github.com/exaring/otelpgx"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stripe/stripe-go/v82"
)

var (
	version = vcs.Version()
)

type Application struct {
	config         Config
	logger         *slog.Logger
	db             *pgxpool.Pool
	redis          redis.UniversalClient
	validator      *validator.Validate
	sessionManager *scs.SessionManager

	store    domain.SeatMapStore
	showings domain.ShowingRepository
	bookings domain.BookingRepository
	holds    domain.HoldRepository
	notifier domain.Notifier

	holdManager *reservation.HoldManager
	engine      *reservation.Engine
	coordinator *reservation.Coordinator
	sweeper     *reservation.Sweeper
}

type Config struct {
	Port int
	Env  string

	DB      DBConfig
	Redis   RedisConfig
	Hold    HoldConfig
	Payment PaymentConfig

	OtelCollectorUrl string
	Migrate          bool
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type HoldConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

type PaymentConfig struct {
	Provider      string // "stripe" or "mock"
	StripeKey     string
	ChargeTimeout time.Duration
	Currency      string
}

func Run() error {
	var cfg Config

	flag.IntVar(&cfg.Port, "port", 3000, "server port")
	flag.StringVar(&cfg.Env, "env", "dev", "Environment (dev|staging|prod)")

	flag.StringVar(&cfg.DB.DSN, "db-dsn", "", "PostgreSQL DSN")
	flag.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	flag.StringVar(&cfg.Redis.URL, "redis-url", "", "Redis URL")
	flag.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.DurationVar(&cfg.Hold.TTL, "hold-ttl", reservation.DefaultHoldTTL, "Seat hold lease duration")
	flag.DurationVar(&cfg.Hold.SweepInterval, "hold-sweep-interval", reservation.DefaultSweepInterval, "Expired hold sweep interval")

	flag.StringVar(&cfg.Payment.Provider, "payment-provider", "stripe", "Payment provider (stripe|mock)")
	flag.StringVar(&cfg.Payment.StripeKey, "stripe-key", "", "Stripe secret key")
	flag.DurationVar(&cfg.Payment.ChargeTimeout, "payment-charge-timeout", reservation.DefaultChargeTimeout, "Bounded timeout for charge calls")
	flag.StringVar(&cfg.Payment.Currency, "payment-currency", "usd", "Charge currency")

	flag.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", "", "OpenTelemetry collector URL")
	flag.BoolVar(&cfg.Migrate, "migrate", false, "Run database migrations on startup")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if cfg.Migrate {
		err := runMigrations(cfg.DB.DSN)
		if err != nil {
			logger.Error("migrations failed", "error", err)
			return err
		}

		logger.Info("migrations applied")
	}

	app, err := New(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.serve()
}

// New wires the application from its configuration. The caller owns the
// returned Application and must Close it.
func New(cfg Config, logger *slog.Logger) (*Application, error) {
	stripe.Key = cfg.Payment.StripeKey

	db, err := newDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := newRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	store := repository.NewPostgresSeatMapStore(db)
	showings := repository.NewPostgresShowingRepository(db)
	bookings := repository.NewPostgresBookingRepository(db)
	holds := repository.NewRedisHoldRepository(redisClient)
	notifier := notify.NewRedisNotifier(redisClient, store, logger)

	holdManager := reservation.NewHoldManager(store, holds, notifier, logger)
	engine := reservation.NewEngine(store, holds, bookings, showings, notifier, logger)

	var gateway domain.PaymentGateway
	if cfg.Payment.Provider == "mock" {
		gateway = payment.NewMockGateway()
	} else {
		gateway = payment.NewStripeGateway()
	}

	coordinator := reservation.NewCoordinator(
		engine,
		holdManager,
		holds,
		showings,
		gateway,
		logger,
		cfg.Payment.ChargeTimeout,
		cfg.Payment.Currency,
	)

	app := &Application{
		config:         cfg,
		logger:         logger,
		db:             db,
		redis:          redisClient,
		validator:      appvalidator.NewValidator(),
		sessionManager: newSessionManager(redisClient),
		store:          store,
		showings:       showings,
		bookings:       bookings,
		holds:          holds,
		notifier:       notifier,
		holdManager:    holdManager,
		engine:         engine,
		coordinator:    coordinator,
		sweeper:        reservation.NewSweeper(holdManager, cfg.Hold.SweepInterval, logger),
	}

	return app, nil
}

// Redis exposes the underlying client for integration fixtures.
func (app *Application) Redis() redis.UniversalClient {
	return app.redis
}

// Sweeper exposes the expiry sweep; serve starts it automatically, test
// harnesses run it themselves.
func (app *Application) Sweeper() *reservation.Sweeper {
	return app.sweeper
}

func (app *Application) Close() {
	if app.db != nil {
		app.db.Close()
	}
	if app.redis != nil {
		app.redis.Close()
	}
}

func newSessionManager(client redis.UniversalClient) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client.(*redis.Client))
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func newRedisClient(cfg Config) (redis.UniversalClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	if cfg.OtelCollectorUrl != "" {
		if err := redisotel.InstrumentTracing(rdb); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func newDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)

	if cfg.OtelCollectorUrl != "" {
		config.ConnConfig.Tracer = otelpgx.NewTracer()
	}

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) serve() error {
	telemetryShutdown, err := app.InitTelemetry()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go app.sweeper.Run(sweepCtx)

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		stopSweep()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		telemetryShutdown(ctx)

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err = srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		stopSweep()
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}
