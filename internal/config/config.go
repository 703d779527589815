package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/poverty-mapper/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Dataset   DatasetConfig   `yaml:"dataset" mapstructure:"dataset"`
	Warehouse WarehouseConfig `yaml:"warehouse" mapstructure:"warehouse"`
	Tile      TileConfig      `yaml:"tile" mapstructure:"tile"`
	Colormap  ColormapConfig  `yaml:"colormap" mapstructure:"colormap"`
	Selection model.Selection `yaml:"selection" mapstructure:"selection"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DatasetConfig identifies the logical dataset and where its cache lives.
type DatasetConfig struct {
	Project   string   `yaml:"project" mapstructure:"project"`
	Dataset   string   `yaml:"dataset" mapstructure:"dataset"`
	Table     string   `yaml:"table" mapstructure:"table"`
	Columns   []string `yaml:"columns" mapstructure:"columns"`
	CacheDir  string   `yaml:"cache_dir" mapstructure:"cache_dir"`
	CacheFile string   `yaml:"cache_file" mapstructure:"cache_file"`
	HasHeader bool     `yaml:"has_header" mapstructure:"has_header"`
}

// CachePath returns the single cache file for the dataset.
func (d DatasetConfig) CachePath() string {
	name := d.CacheFile
	if name == "" {
		name = d.Table + ".csv"
	}
	return filepath.Join(d.CacheDir, name)
}

// WarehouseConfig selects and configures the remote query client.
type WarehouseConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Endpoint    string `yaml:"endpoint" mapstructure:"endpoint"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
	RateLimit   int    `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// TileConfig configures tile generation.
type TileConfig struct {
	SizeMeters  float64 `yaml:"size_meters" mapstructure:"size_meters"`
	Concurrency int     `yaml:"concurrency" mapstructure:"concurrency"`
}

// ColormapConfig configures the wealth index colormap.
type ColormapConfig struct {
	Colors      []string `yaml:"colors" mapstructure:"colors"`
	Caption     string   `yaml:"caption" mapstructure:"caption"`
	FillOpacity float64  `yaml:"fill_opacity" mapstructure:"fill_opacity"`
	Weight      float64  `yaml:"weight" mapstructure:"weight"`
}

// ServerConfig configures the map server.
type ServerConfig struct {
	Port         int      `yaml:"port" mapstructure:"port"`
	CacheSize    int      `yaml:"cache_size" mapstructure:"cache_size"`
	CacheTTLSecs int      `yaml:"cache_ttl_secs" mapstructure:"cache_ttl_secs"`
	AllowOrigins []string `yaml:"allow_origins" mapstructure:"allow_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MAPPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("dataset.project", "poverty-mapper")
	v.SetDefault("dataset.dataset", "survey")
	v.SetDefault("dataset.table", "DHS_CLUSTERS")
	v.SetDefault("dataset.columns", model.Columns)
	v.SetDefault("dataset.cache_dir", "raw_data")
	v.SetDefault("dataset.cache_file", "DHS_CLUSTERS.csv")
	v.SetDefault("dataset.has_header", true)
	v.SetDefault("warehouse.driver", "postgres")
	v.SetDefault("warehouse.timeout_secs", 60)
	v.SetDefault("warehouse.max_retries", 3)
	v.SetDefault("warehouse.rate_limit", 5)
	v.SetDefault("tile.size_meters", 67200)
	v.SetDefault("tile.concurrency", 8)
	v.SetDefault("colormap.colors", []string{"purple", "white", "orange"})
	v.SetDefault("colormap.caption", "Wealthpooled")
	v.SetDefault("colormap.fill_opacity", 0.8)
	v.SetDefault("colormap.weight", 0.8)
	v.SetDefault("selection.year", 2015)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cache_size", 64)
	v.SetDefault("server.cache_ttl_secs", 300)
	v.SetDefault("server.allow_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Modes: "render",
// "serve", "seed".
func (c *Config) Validate(mode string) error {
	var errs []string

	checkWarehouse := func() {
		switch c.Warehouse.Driver {
		case "postgres", "sqlite":
			if c.Warehouse.DatabaseURL == "" {
				errs = append(errs, "warehouse.database_url is required for driver "+c.Warehouse.Driver)
			}
		case "http":
			if c.Warehouse.Endpoint == "" {
				errs = append(errs, "warehouse.endpoint is required for driver http")
			}
		default:
			errs = append(errs, fmt.Sprintf("warehouse.driver %q is not one of postgres, sqlite, http", c.Warehouse.Driver))
		}
	}
	checkRender := func() {
		if c.Tile.SizeMeters <= 0 {
			errs = append(errs, "tile.size_meters must be > 0")
		}
		if len(c.Colormap.Colors) < 2 {
			errs = append(errs, "colormap.colors needs at least 2 colors")
		}
		if c.Dataset.CacheDir == "" {
			errs = append(errs, "dataset.cache_dir is required")
		}
	}

	switch mode {
	case "render":
		checkRender()
	case "serve":
		checkRender()
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	case "seed":
		checkWarehouse()
		if c.Warehouse.Driver != "postgres" {
			errs = append(errs, "warehouse seed requires driver postgres")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
