package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/lejapetric/simon/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm/logger"
)

// Database owns the project store and the optional Redis client
type Database struct {
	dbType      string
	projectRepo ProjectRepo
	redis       *redis.Client
}

// New wraps an already opened store
func New(dbType string, projectRepo ProjectRepo, redisClient *redis.Client) *Database {
	return &Database{
		dbType:      dbType,
		projectRepo: projectRepo,
		redis:       redisClient,
	}
}

// Open connects the backend selected by cfg.DBType and, when configured, Redis
func Open(ctx context.Context, cfg *config.Config, gormLogger logger.Interface) (*Database, error) {
	var (
		repo ProjectRepo
		err  error
	)
	switch cfg.DBType {
	case config.DBTypeMongo:
		log.Info().Str("database", cfg.MongoDatabase).Str("collection", cfg.MongoCollection).Msg("connecting to MongoDB")
		repo, err = OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	case config.DBTypePostgres:
		log.Info().Bool("replica", cfg.PostgresReplicaDSN != "").Msg("connecting to PostgreSQL")
		repo, err = OpenPostgres(ctx, cfg.PostgresDSN, cfg.PostgresReplicaDSN, gormLogger)
	case config.DBTypeMemory:
		log.Warn().Msg("using in-memory project store, data is lost on exit")
		repo = NewMemoryProjectRepo()
	default:
		err = fmt.Errorf("unsupported DB_TYPE %q", cfg.DBType)
	}
	if err != nil {
		return nil, err
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			_ = repo.Close(context.Background())
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		redisClient = redis.NewClient(opt)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis not reachable at startup")
		}
	}

	return New(cfg.DBType, repo, redisClient), nil
}

func (d *Database) Type() string {
	return d.dbType
}

func (d *Database) ProjectRepo() ProjectRepo {
	return d.projectRepo
}

// Redis returns the Redis client, nil when REDIS_URL is unset
func (d *Database) Redis() *redis.Client {
	return d.redis
}

// MongoRepo returns the Mongo store when that backend is active
func (d *Database) MongoRepo() (*MongoProjectRepo, bool) {
	r, ok := d.projectRepo.(*MongoProjectRepo)
	return r, ok
}

// PostgresRepo returns the PostgreSQL store when that backend is active
func (d *Database) PostgresRepo() (*PostgresProjectRepo, bool) {
	r, ok := d.projectRepo.(*PostgresProjectRepo)
	return r, ok
}

func (d *Database) Close(ctx context.Context) error {
	var errList []error
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			errList = append(errList, fmt.Errorf("close redis: %w", err))
		}
	}
	if err := d.projectRepo.Close(ctx); err != nil {
		errList = append(errList, fmt.Errorf("close %s store: %w", d.dbType, err))
	}
	return errors.Join(errList...)
}
