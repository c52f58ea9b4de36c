package report

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"pricelist-extractor/internal/types"
)

// DBConfig holds the MySQL connection settings for report generation
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string

	// Attempts bounds how many pings are tried before giving up
	Attempts int
	Backoff  time.Duration
}

// DBConfigFromEnv reads MYSQL_HOST, MYSQL_PORT, MYSQL_USER, MYSQL_PASSWORD and MYSQL_DB
func DBConfigFromEnv() DBConfig {
	port, err := strconv.Atoi(getEnv("MYSQL_PORT", "3306"))
	if err != nil {
		port = 3306
	}
	return DBConfig{
		Host:     getEnv("MYSQL_HOST", "localhost"),
		Port:     port,
		User:     getEnv("MYSQL_USER", "root"),
		Password: os.Getenv("MYSQL_PASSWORD"),
		Database: getEnv("MYSQL_DB", "boxer"),
		Attempts: 5,
		Backoff:  time.Second,
	}
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// DSN formats the driver connection string
func (c DBConfig) DSN() string {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.DBName = c.Database
	cfg.ParseTime = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// Connect opens the database and pings it with exponential backoff
func Connect(ctx context.Context, c DBConfig, logger types.Logger) (*sql.DB, error) {
	db, err := sql.Open("mysql", c.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	attempts := c.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	wait := c.Backoff
	for i := 1; ; i++ {
		err = db.PingContext(ctx)
		if err == nil {
			break
		}
		if i >= attempts {
			db.Close()
			return nil, fmt.Errorf("database unreachable after %d attempts: %w", attempts, err)
		}
		logger.Warnf("Database connection failed, retrying in %v: %v", wait, err)
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	return db, nil
}
