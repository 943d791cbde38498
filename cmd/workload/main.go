package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/cli"
	"github.com/alexanderramin/workload/internal/config"
	"github.com/alexanderramin/workload/internal/db"
	"github.com/alexanderramin/workload/internal/lock"
	"github.com/alexanderramin/workload/internal/repository"
	"github.com/alexanderramin/workload/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// configPath picks --config out of the arguments ahead of cobra, falling
// back to WORKLOAD_CONFIG.
func configPath(args []string) string {
	fs := pflag.NewFlagSet("workload", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)
	path := fs.String("config", os.Getenv("WORKLOAD_CONFIG"), "")
	_ = fs.Parse(args)
	return *path
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func newLogger(cfg config.LogConfig) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("log level: %w", err)
	}
	var out io.Writer = os.Stderr
	if cfg.Format == "console" || (cfg.Format != "json" && isTerminal(os.Stderr.Fd())) {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

func newLocker(cfg *config.Config, logger zerolog.Logger) (lock.Locker, func()) {
	if cfg.Lock.Backend != "redis" {
		return lock.NewLocal(), func() {}
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Lock.RedisAddr})
	logger.Debug().Str("addr", cfg.Lock.RedisAddr).Msg("using redis worker locks")
	return lock.NewRedis(client, cfg.LockTTL(), 0), func() { _ = client.Close() }
}

func run() error {
	cfg, err := config.Load(configPath(os.Args[1:]))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	cal, err := calendar.New(cfg.Calendar.Timezone)
	if err != nil {
		return err
	}
	defaults, err := cfg.CapacityDefaults()
	if err != nil {
		return err
	}

	// Open database
	database, err := db.OpenDB(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	workerRepo := repository.NewSQLiteWorkerRepo(database)
	taskRepo := repository.NewSQLiteTaskRepo(database)
	commitmentRepo := repository.NewSQLiteCommitmentRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	locker, closeLocker := newLocker(cfg, logger)
	defer closeLocker()

	settings := service.Settings{Calendar: cal, Defaults: defaults, Logger: logger}
	observer := service.NewLogUseCaseObserver(logger)

	app := &cli.App{
		Workers:    service.NewWorkerService(workerRepo, settings),
		Capacity:   service.NewCapacityService(workerRepo, taskRepo, commitmentRepo, settings),
		Allocation: service.NewAllocationService(workerRepo, taskRepo, commitmentRepo, uow, locker, settings, observer),
		Blocks:     service.NewBlockService(taskRepo, uow, locker, settings, observer),

		Calendar:           cal,
		Logger:             logger,
		DefaultSchedule:    cfg.Worker.Schedule,
		DefaultLunch:       defaults.Lunch,
		MorningDeliveryCap: cfg.Worker.MorningDeliveryCap,
		MetricsAddr:        cfg.Metrics.Addr,
	}

	// Prompts only when a person is at the keyboard.
	app.IsInteractive = func() bool {
		return isTerminal(os.Stdin.Fd())
	}

	// Execute root command
	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}
