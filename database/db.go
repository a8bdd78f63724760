package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/apex/log"
	_ "github.com/go-sql-driver/mysql"

	"github.com/abhikanjia/waste-management-api/config"
)

// buildDSN assembles the MySQL connection string. group_concat_max_len is
// raised per session because complaint image lists come back through
// GROUP_CONCAT and the server default of 1024 bytes would truncate them.
func buildDSN(cfg *config.Config) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&multiStatements=true&group_concat_max_len=1048576",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
}

// Connect opens the MySQL pool and waits for the database to become
// reachable. Container startups race the database, so the first ping retries
// with backoff instead of failing outright.
func Connect(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen := envInt("DB_MAX_OPEN_CONNS", 25)
	maxIdle := envInt("DB_MAX_IDLE_CONNS", 10)
	connMaxLifetimeMin := envInt("DB_CONN_MAX_LIFETIME_MIN", 5)
	pingMaxWaitSec := envInt("DB_PING_MAX_WAIT_SEC", 60)

	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	if connMaxLifetimeMin > 0 {
		db.SetConnMaxLifetime(time.Duration(connMaxLifetimeMin) * time.Minute)
	}

	deadline := time.Now().Add(time.Duration(pingMaxWaitSec) * time.Second)
	waitInterval := time.Second
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		pingErr := db.PingContext(ctx)
		cancel()
		if pingErr == nil {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("database ping timeout after %ds: %w", pingMaxWaitSec, pingErr)
		}
		log.Warnf("Database connection failed, retrying in %v: %v", waitInterval, pingErr)
		time.Sleep(waitInterval)
		waitInterval *= 2
		if waitInterval > 30*time.Second {
			waitInterval = 30 * time.Second
		}
	}

	log.Infof("Established db connection pool: open=%d idle=%d max_lifetime_min=%d", maxOpen, maxIdle, connMaxLifetimeMin)
	return db, nil
}

func envInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

// logResult warns when a write affected an unexpected number of rows.
func logResult(msgPrefix string, r sql.Result, e error, expectOne bool) {
	if e != nil {
		log.Errorf("Query failed: %v", e)
		return
	}
	rows, err := r.RowsAffected()
	if err != nil {
		log.Errorf("Failed to get status of db op: %v", err)
		return
	}
	if expectOne && rows != 1 {
		log.Warnf("%s: Expected to affect 1 row, affected %d", msgPrefix, rows)
	}
}
