package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	require.Equal(t, "localhost", cfg.DBHost)
	require.Equal(t, "8086", cfg.DBPort)
	require.Equal(t, "root", cfg.DBUser)
	require.Equal(t, "root", cfg.DBPassword)
	require.Equal(t, "mydb", cfg.DBName)
	require.Equal(t, "nocall", cfg.Callsign)
	require.Equal(t, "10152", cfg.Port)
	require.Equal(t, 15.0, cfg.Interval)
	require.Empty(t, cfg.RedisAddr)
}

func TestLoadFlags(t *testing.T) {
	cfg, err := Load([]string{
		"--callsign", "N0CALL",
		"--interval", "0.5",
		"--dbname", "aprs",
		"--redis", "localhost:6379",
	})
	require.NoError(t, err)

	require.Equal(t, "N0CALL", cfg.Callsign)
	require.Equal(t, 0.5, cfg.Interval)
	require.Equal(t, "aprs", cfg.DBName)
	require.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoadEnvFallback(t *testing.T) {
	t.Setenv("APRS2INFLUXDB_DBHOST", "influx.local")

	cfg, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, "influx.local", cfg.DBHost)

	// An explicit flag still wins over the environment.
	cfg, err = Load([]string{"--dbhost", "elsewhere"})
	require.NoError(t, err)
	require.Equal(t, "elsewhere", cfg.DBHost)
}
