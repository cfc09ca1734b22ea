// Package database handles database connections and migrations.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ripple/internal/config"
	"ripple/internal/middleware"
	"ripple/internal/observability"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database connection instance.
var DB *gorm.DB

// readDB is an optional read-replica connection. Nil when no replica is
// configured; callers fall back to the primary.
var readDB *gorm.DB

// GetReadDB returns the read-replica connection, or nil if none is configured.
func GetReadDB() *gorm.DB {
	return readDB
}

// CustomGormLogger integrates GORM with slog
type CustomGormLogger struct {
	logger *slog.Logger
	Config logger.Config
}

// LogMode sets the logging level and returns a new interface instance.
func (l *CustomGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newlogger := *l
	newlogger.Config.LogLevel = level
	return &newlogger
}

// Info logs an informational message with context.
func (l *CustomGormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel >= logger.Info {
		l.logger.InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

// Warn logs a warning message with context.
func (l *CustomGormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel >= logger.Warn {
		l.logger.WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *CustomGormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel >= logger.Error {
		l.logger.ErrorContext(ctx, fmt.Sprintf(msg, data...))
	}
}

// queryOperation extracts the leading SQL verb for the latency metric label.
func queryOperation(sql string) string {
	sql = strings.TrimSpace(sql)
	if i := strings.IndexByte(sql, ' '); i > 0 {
		return strings.ToUpper(sql[:i])
	}
	return "OTHER"
}

// Trace logs trace-level information including SQL queries and execution time.
func (l *CustomGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.Config.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	observability.ObserveQuery(queryOperation(sql), elapsed)

	switch {
	case err != nil && l.Config.LogLevel >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		l.logger.ErrorContext(ctx, "GORM query error",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)
	case elapsed > l.Config.SlowThreshold && l.Config.SlowThreshold != 0 && l.Config.LogLevel >= logger.Warn:
		l.logger.WarnContext(ctx, "GORM slow query",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
		)
	case l.Config.LogLevel >= logger.Info:
		l.logger.InfoContext(ctx, "GORM query",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
		)
	}
}

func openDialector(cfg *config.Config) gorm.Dialector {
	if cfg.DBDriver == "sqlite" {
		path := cfg.DBPath
		if path == "" {
			path = "ripple.db"
		}
		return sqlite.Open(path)
	}

	sslMode := cfg.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		sslMode,
	)
	return postgres.Open(dsn)
}

// ConnectOptions controls connection-time behavior.
type ConnectOptions struct {
	// ApplySchema runs the configured schema policy (SQL migrations and/or
	// automigrate) right after connecting.
	ApplySchema bool
}

// Connect opens a database connection using the provided configuration and
// applies the schema policy. Use ConnectWithOptions to skip schema work,
// e.g. in the migrate command which applies it explicitly.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	return ConnectWithOptions(cfg, ConnectOptions{ApplySchema: true})
}

// ConnectWithOptions opens a database connection with explicit connection
// behavior and returns the gorm DB instance.
func ConnectWithOptions(cfg *config.Config, opts ConnectOptions) (*gorm.DB, error) {
	// Custom GORM logger that uses slog and ignores ErrRecordNotFound
	gormLogger := &CustomGormLogger{
		logger: middleware.Logger,
		Config: logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	}

	dbInstance, err := gorm.Open(openDialector(cfg), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	middleware.Logger.Info("Database connected successfully", slog.String("driver", cfg.DBDriver))

	if opts.ApplySchema {
		if err := ApplySchema(context.Background(), dbInstance, cfg); err != nil {
			return nil, err
		}
	}

	// Set connection pooling parameters
	sqlDB, err := dbInstance.DB()
	if err == nil {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	if cfg.DBReadHost != "" && cfg.DBDriver == "postgres" {
		readCfg := *cfg
		readCfg.DBHost = cfg.DBReadHost
		if cfg.DBReadPort != "" {
			readCfg.DBPort = cfg.DBReadPort
		}
		replica, replicaErr := gorm.Open(openDialector(&readCfg), &gorm.Config{Logger: gormLogger})
		if replicaErr != nil {
			middleware.Logger.Warn("Read replica unavailable, using primary for reads", slog.String("error", replicaErr.Error()))
		} else {
			readDB = replica
			middleware.Logger.Info("Read replica connected", slog.String("host", cfg.DBReadHost))
		}
	}

	DB = dbInstance
	return DB, nil
}
