package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm/logger"

	"github.com/lejapetric/simon/api"
	"github.com/lejapetric/simon/config"
	"github.com/lejapetric/simon/database"
	"github.com/lejapetric/simon/services"
)

func main() {
	// Load environment variables from .env file
	if err := config.LoadDotEnv(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	setupLogger(cfg)

	log.Info().Str("DB_TYPE", cfg.DBType).Str("APP_ENV", cfg.Env).Msg("Initializing app...")

	newLogger := logger.New(
		stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  cfg.IsDev(),
		},
	)

	connectCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	currentDB, err := database.Open(connectCtx, cfg, newLogger)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}
	defer closeDatabase(currentDB)

	// If migrating legacy documents, run the migration and exit
	if cfg.MigrateLegacy {
		if err := migrateLegacy(currentDB); err != nil {
			log.Error().Err(err).Msg("Legacy migration failed")
			closeDatabase(currentDB)
			os.Exit(1)
		}
		return
	}

	// If generating a schema report, print it and exit
	if cfg.SchemaReport {
		if err := schemaReport(currentDB); err != nil {
			log.Error().Err(err).Msg("Schema report failed")
			closeDatabase(currentDB)
			os.Exit(1)
		}
		return
	}

	// Start and listenToInterrupt may both send
	errChannel := make(chan error, 2)

	server, err := api.NewServer(cfg, currentDB, newNotifier(cfg))
	if err != nil {
		log.Error().Err(err).Msg("Error initializing server")
		closeDatabase(currentDB)
		os.Exit(1)
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDev() {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func newNotifier(cfg *config.Config) services.Notifier {
	if !cfg.ContactForwardingEnabled() {
		log.Info().Msg("Contact forwarding not configured, submissions are only logged")
		return services.NoopNotifier{}
	}
	client := services.NewResendClient(cfg.ResendAPIKey, cfg.ResendFromEmail)
	return services.NewEmailNotifier(client, cfg.ContactRecipients)
}

func migrateLegacy(db *database.Database) error {
	repo, ok := db.MongoRepo()
	if !ok {
		return fmt.Errorf("legacy migration needs the mongo store, got %s", db.Type())
	}

	log.Info().Msg("Migrating legacy project documents...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	report, err := repo.MigrateLegacy(ctx)
	if err != nil {
		return err
	}
	log.Info().
		Int64("renamed", report.Renamed).
		Int64("monthsConverted", report.MonthsConverted).
		Int64("yearsConverted", report.YearsConverted).
		Int64("imagesDefaulted", report.ImagesDefaulted).
		Int64("timestampsFilled", report.TimestampsFilled).
		Msg("Legacy migration finished")
	return nil
}

func schemaReport(db *database.Database) error {
	repo, ok := db.PostgresRepo()
	if !ok {
		return fmt.Errorf("schema report needs the postgres store, got %s", db.Type())
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	report, err := repo.SchemaReport(ctx)
	if err != nil {
		return err
	}
	fmt.Println("=== COLUMN MISMATCH REPORT ===")
	fmt.Printf("--- Table: %s ---\n", report.Table)
	if report.Clean() {
		fmt.Println("All columns are accounted for in the model.")
		return nil
	}
	for _, col := range report.UnmappedColumns {
		fmt.Printf("  - %s (not mapped by the model)\n", col)
	}
	for _, col := range report.MissingColumns {
		fmt.Printf("  - %s (missing from the table)\n", col)
	}
	return nil
}

// closeDatabase releases the store once the server no longer uses it
func closeDatabase(db *database.Database) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.Close(ctx); err != nil {
		log.Error().Err(err).Msg("Error closing database")
		return
	}
	log.Info().Msg("Database closed")
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
