package configs

import (
	"fmt"
	"net"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// DSN builds the MySQL connection string for the configured database.
func (c DBConfig) DSN() string {
	cfg := mysqldriver.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.Host, c.Port)
	cfg.DBName = c.Name
	cfg.ParseTime = true
	cfg.Loc = time.Local
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// GormConfig is shared by every connection so that driver errors are translated into gorm's
// sentinel errors (gorm.ErrDuplicatedKey in particular).
func GormConfig() *gorm.Config {
	return &gorm.Config{TranslateError: true}
}

func OpenConnection(cfg DBConfig, logger *zap.Logger) (*gorm.DB, error) {
	dsn := cfg.DSN()

	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		logger.Info("Attempting to connect to database",
			zap.Int("attempt", i+1), zap.Int("max_retries", maxRetries),
			zap.String("host", cfg.Host), zap.String("db_name", cfg.Name))

		db, err := gorm.Open(mysql.Open(dsn), GormConfig())
		if err == nil {
			sqlDB, pingErr := db.DB()
			if pingErr == nil {
				sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
				sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
				pingErr = sqlDB.Ping()
				if pingErr == nil {
					logger.Info("Database connection successful")
					return db, nil
				}
			}
			lastErr = pingErr
			logger.Warn("Failed to ping database", zap.Error(pingErr), zap.Duration("retry_in", cfg.RetryDelay))
		} else {
			lastErr = err
			logger.Warn("Failed to open GORM connection", zap.Error(err), zap.Duration("retry_in", cfg.RetryDelay))
		}

		if i < maxRetries-1 {
			time.Sleep(cfg.RetryDelay)
		}
	}

	return nil, fmt.Errorf("failed to connect to the database after %d retries: %w", maxRetries, lastErr)
}
