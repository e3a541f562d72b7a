package clickhouse

import "time"

// Config describes the recommendation store connection. Zero fields take the
// `default` tag value; Host has none and must be set.
type Config struct {
	Host     string
	Port     int    `default:"9000"`
	Database string `default:"default"`
	User     string `default:"default"`
	Password string

	MaxOpenConns    int           `default:"10"`
	MaxIdleConns    int           `default:"5"`
	ConnMaxLifetime time.Duration `default:"5m"`
	DialTimeout     time.Duration `default:"5s"`
	ReadTimeout     time.Duration `default:"10s"`
	MaxExecTime     time.Duration

	// UseHTTP switches the DSN scheme to the HTTP interface (port 8123 usually).
	UseHTTP      bool
	AsyncInsert  bool
	WaitForAsync bool
}
