package mysql

import (
	"database/sql"
	"fmt"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
)

// DSN returns raw with parseTime on and times in UTC. Runs are scanned into
// time.Time, which the driver only produces with parseTime set.
func DSN(raw string) (string, error) {
	c, err := gomysql.ParseDSN(raw)
	if err != nil {
		return "", fmt.Errorf("parse MYSQL_DSN: %w", err)
	}
	c.ParseTime = true
	c.Loc = time.UTC
	return c.FormatDSN(), nil
}

// Open normalizes raw through DSN and opens a pool on it.
func Open(raw string) (*sql.DB, error) {
	dsn, err := DSN(raw)
	if err != nil {
		return nil, err
	}
	return sql.Open("mysql", dsn)
}
