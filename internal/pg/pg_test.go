package pg

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnConfig(t *testing.T) {
	cfg := Config{
		Host:           "db.example",
		Port:           6543,
		User:           "seed user",
		Password:       "p@ss/word' x",
		DBName:         "default_db",
		ConnectTimeout: 2500 * time.Millisecond,
	}
	cc, err := cfg.ConnConfig()
	require.NoError(t, err)

	assert.Equal(t, "db.example", cc.Host)
	assert.Equal(t, uint16(6543), cc.Port)
	assert.Equal(t, "seed user", cc.User)
	assert.Equal(t, "p@ss/word' x", cc.Password)
	assert.Equal(t, "default_db", cc.Database)
	assert.Equal(t, 2500*time.Millisecond, cc.ConnectTimeout)
	assert.Nil(t, cc.TLSConfig)
	assert.Empty(t, cc.Fallbacks)
}

func TestConnConfigSocketDirectory(t *testing.T) {
	cfg := Config{Host: "/var/run/postgresql", Port: 5432, User: "postgres", DBName: "default_db"}
	cc, err := cfg.ConnConfig()
	require.NoError(t, err)

	assert.Equal(t, "/var/run/postgresql", cc.Host)
	network, addr := pgconn.NetworkAddress(cc.Host, cc.Port)
	assert.Equal(t, "unix", network)
	assert.Equal(t, "/var/run/postgresql/.s.PGSQL.5432", addr)
}

func TestConnConfigIPv6(t *testing.T) {
	cc, err := Config{Host: "::1", Port: 5432, User: "u", DBName: "d"}.ConnConfig()
	require.NoError(t, err)
	network, addr := pgconn.NetworkAddress(cc.Host, cc.Port)
	assert.Equal(t, "tcp", network)
	assert.Equal(t, "[::1]:5432", addr)
}

func TestConnConfigIgnoresEnvironment(t *testing.T) {
	t.Setenv("PGHOST", "elsewhere")
	t.Setenv("PGPORT", "7777")
	t.Setenv("PGDATABASE", "other")
	t.Setenv("PGSSLMODE", "require")

	cc, err := Config{Host: "localhost", Port: 5432, User: "postgres", DBName: "default_db"}.ConnConfig()
	require.NoError(t, err)
	assert.Equal(t, "localhost", cc.Host)
	assert.Equal(t, uint16(5432), cc.Port)
	assert.Equal(t, "default_db", cc.Database)
	assert.Nil(t, cc.TLSConfig)
	assert.Empty(t, cc.Fallbacks)
}

func TestConnectUnreachableHost(t *testing.T) {
	cfg := Config{
		Host:           "127.0.0.1",
		Port:           1,
		User:           "postgres",
		Password:       "postgres",
		DBName:         "default_db",
		ConnectTimeout: 2 * time.Second,
	}
	conn, err := Connect(context.Background(), cfg, nil, nil)
	assert.Error(t, err)
	assert.Nil(t, conn)
}
