package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/remiges-tech/logharbour/logharbour"
)

type Config struct {
	Host           string
	Port           int
	User           string
	Password       string
	DBName         string
	ConnectTimeout time.Duration
}

// ConnConfig turns cfg into a pgx connection config with TLS disabled.
// Host may be a name, an address or a Unix socket directory such as
// /var/run/postgresql. PG* environment variables never override cfg.
func (cfg Config) ConnConfig() (*pgx.ConnConfig, error) {
	cc, err := pgx.ParseConfig("")
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection config: %w", err)
	}
	cc.Host = cfg.Host
	cc.Port = uint16(cfg.Port)
	cc.User = cfg.User
	cc.Password = cfg.Password
	cc.Database = cfg.DBName
	cc.ConnectTimeout = cfg.ConnectTimeout
	cc.TLSConfig = nil
	cc.Fallbacks = nil
	return cc, nil
}

// Connect opens a single connection and checks it with a ping. Every statement
// run on the connection is traced into logger at the priority held by level.
func Connect(ctx context.Context, cfg Config, logger *logharbour.Logger, level *LogLevel) (*pgx.Conn, error) {
	connConfig, err := cfg.ConnConfig()
	if err != nil {
		return nil, err
	}
	if logger != nil {
		if level == nil {
			level = &LogLevel{}
			level.Set(tracelog.LogLevelInfo)
		}
		connConfig.Tracer = &tracelog.TraceLog{
			Logger:   &LogharbourPgxTracerLogger{logger: logger, logLevel: level},
			LogLevel: tracelog.LogLevelTrace,
		}
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.DBName, err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close(context.Background())
		return nil, fmt.Errorf("ping failed: %w", err)
	}
	return conn, nil
}
