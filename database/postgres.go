package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

//go:embed migrations
var embedMigrations embed.FS

// ConnectPostgres opens a pgx backed connection pool and verifies it with a ping
func ConnectPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("database open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}
	return db, nil
}

// Migrate runs all pending goose migrations from the embedded SQL files
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	log.Info().Msg("database migrations applied")
	return nil
}

// OpenPostgres connects the primary (and the replica when replicaDSN is set),
// applies migrations and returns a GORM backed repository. Reads are routed
// to the replica by dbresolver.
func OpenPostgres(ctx context.Context, dsn, replicaDSN string, gormLogger logger.Interface) (*PostgresProjectRepo, error) {
	primary, err := ConnectPostgres(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := Migrate(primary); err != nil {
		primary.Close()
		return nil, err
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: primary}), &gorm.Config{
		PrepareStmt: false,
		Logger:      gormLogger,
	})
	if err != nil {
		primary.Close()
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	pools := []*sql.DB{primary}
	if replicaDSN != "" {
		replica, err := ConnectPostgres(ctx, replicaDSN)
		if err != nil {
			primary.Close()
			return nil, fmt.Errorf("replica: %w", err)
		}
		pools = append(pools, replica)

		err = db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.New(postgres.Config{Conn: replica})},
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			closeAll(pools)
			return nil, fmt.Errorf("register read replica: %w", err)
		}
		log.Info().Msg("read replica registered")
	}

	return NewPostgresProjectRepo(db, pools...), nil
}

func closeAll(pools []*sql.DB) error {
	var first error
	for _, p := range pools {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
