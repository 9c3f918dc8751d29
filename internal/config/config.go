package config

import (
	"os"

	"github.com/spf13/pflag"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	Callsign string
	Server   string
	Port     string
	Interval float64 // heartbeat interval, minutes

	LogFile     string
	Verbose     bool
	RedisAddr   string
	MetricsPort string
}

// Load parses command line flags. String defaults can be overridden through
// APRS2INFLUXDB_* environment variables.
func Load(args []string) (Config, error) {
	var cfg Config
	fs := pflag.NewFlagSet("aprs2influxdb", pflag.ContinueOnError)

	fs.StringVar(&cfg.DBHost, "dbhost", getEnv("APRS2INFLUXDB_DBHOST", "localhost"), "InfluxDB host")
	fs.StringVar(&cfg.DBPort, "dbport", getEnv("APRS2INFLUXDB_DBPORT", "8086"), "InfluxDB port")
	fs.StringVar(&cfg.DBUser, "dbuser", getEnv("APRS2INFLUXDB_DBUSER", "root"), "InfluxDB user")
	fs.StringVar(&cfg.DBPassword, "dbpassword", getEnv("APRS2INFLUXDB_DBPASSWORD", "root"), "InfluxDB password")
	fs.StringVar(&cfg.DBName, "dbname", getEnv("APRS2INFLUXDB_DBNAME", "mydb"), "InfluxDB database name")

	fs.StringVar(&cfg.Callsign, "callsign", getEnv("APRS2INFLUXDB_CALLSIGN", "nocall"), "APRS-IS login callsign")
	fs.StringVar(&cfg.Server, "server", getEnv("APRS2INFLUXDB_SERVER", "rotate.aprs.net"), "APRS-IS server")
	fs.StringVar(&cfg.Port, "port", getEnv("APRS2INFLUXDB_PORT", "10152"), "APRS-IS port")
	fs.Float64Var(&cfg.Interval, "interval", 15, "APRS-IS heartbeat interval in minutes")

	fs.StringVar(&cfg.LogFile, "logfile", getEnv("APRS2INFLUXDB_LOGFILE", "aprs2influxdb.log"), "rotating log file path")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "log at debug level instead of warning")
	fs.StringVar(&cfg.RedisAddr, "redis", getEnv("APRS2INFLUXDB_REDIS", ""), "redis address for duplicate packet filtering (empty disables)")
	fs.StringVar(&cfg.MetricsPort, "metrics-port", getEnv("APRS2INFLUXDB_METRICS_PORT", "9100"), "prometheus metrics port (empty disables)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
