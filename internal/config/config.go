package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	DB     DBConfig     `mapstructure:"db"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Cron   CronConfig   `mapstructure:"cron"`
	Feed   FeedConfig   `mapstructure:"feed"`
	Engine EngineConfig `mapstructure:"engine"`
	Risk   RiskConfig   `mapstructure:"risk"`
	Push   PushConfig   `mapstructure:"push"`
	Admin  AdminConfig  `mapstructure:"admin"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

// DBConfig configures the optional durable store. An empty DSN runs the
// engine purely in memory.
type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

// RedisConfig configures the optional market snapshot cache. An empty URL
// disables it.
type RedisConfig struct {
	URL string        `mapstructure:"url"`
	TTL time.Duration `mapstructure:"ttl"`
}

type CronConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Refresh     string `mapstructure:"refresh"`
	SettleSweep string `mapstructure:"settle_sweep"`
}

// FeedConfig points the engine at the upstream score and odds providers.
// Empty URLs disable the respective provider.
type FeedConfig struct {
	ScoreURL         string        `mapstructure:"score_url"`
	OddsPrimaryURL   string        `mapstructure:"odds_primary_url"`
	OddsSecondaryURL string        `mapstructure:"odds_secondary_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	DetailWorkers    int           `mapstructure:"detail_workers"`
}

type EngineConfig struct {
	RefreshTimeout   time.Duration `mapstructure:"refresh_timeout"`
	StaleAfter       time.Duration `mapstructure:"stale_after"`
	HistoryRetention int           `mapstructure:"history_retention"`
	AuditRetention   int           `mapstructure:"audit_retention"`
}

// RiskConfig holds the monetary knobs. Caps of zero disable the check.
type RiskConfig struct {
	StartingBalance  float64 `mapstructure:"starting_balance"`
	MaxUserExposure  float64 `mapstructure:"max_user_exposure"`
	MaxMatchExposure float64 `mapstructure:"max_match_exposure"`
}

type PushConfig struct {
	SendBuffer int `mapstructure:"send_buffer"`
}

// AdminConfig guards the admin routes. An empty token leaves them open,
// which is only sensible on a private deployment.
type AdminConfig struct {
	Token string `mapstructure:"token"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("YN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.ttl", "5m")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.refresh", "@every 45s")
	v.SetDefault("cron.settle_sweep", "@every 2m")
	v.SetDefault("feed.score_url", "")
	v.SetDefault("feed.odds_primary_url", "")
	v.SetDefault("feed.odds_secondary_url", "")
	v.SetDefault("feed.timeout", "20s")
	v.SetDefault("feed.detail_workers", 6)
	v.SetDefault("engine.refresh_timeout", "30s")
	v.SetDefault("engine.stale_after", "3m")
	v.SetDefault("engine.history_retention", 120)
	v.SetDefault("engine.audit_retention", 500)
	v.SetDefault("risk.starting_balance", 1000)
	v.SetDefault("risk.max_user_exposure", 5000)
	v.SetDefault("risk.max_match_exposure", 50000)
	v.SetDefault("push.send_buffer", 32)
	v.SetDefault("admin.token", "")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
