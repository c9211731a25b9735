package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Inputs   InputsConfig   `yaml:"inputs" mapstructure:"inputs"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Map      MapConfig      `yaml:"map" mapstructure:"map"`
	Clip     ClipConfig     `yaml:"clip" mapstructure:"clip"`
	Simplify SimplifyConfig `yaml:"simplify" mapstructure:"simplify"`
	TigerWeb TigerWebConfig `yaml:"tigerweb" mapstructure:"tigerweb"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Serve    ServeConfig    `yaml:"serve" mapstructure:"serve"`
	Markets  MarketsConfig  `yaml:"markets" mapstructure:"markets"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// InputsConfig holds the default layer input paths for a build.
type InputsConfig struct {
	Boundary         string `yaml:"boundary" mapstructure:"boundary"`
	OpportunityZones string `yaml:"opportunity_zones" mapstructure:"opportunity_zones"`
	QCT              string `yaml:"qct" mapstructure:"qct"`
	Streets          string `yaml:"streets" mapstructure:"streets"`
}

// OutputConfig configures build outputs.
type OutputConfig struct {
	HTML string `yaml:"html" mapstructure:"html"`
	Dir  string `yaml:"dir" mapstructure:"dir"`
}

// MapConfig configures the rendered map view.
type MapConfig struct {
	Title     string  `yaml:"title" mapstructure:"title"`
	Zoom      int     `yaml:"zoom" mapstructure:"zoom"`
	CenterLat float64 `yaml:"center_lat" mapstructure:"center_lat"`
	CenterLng float64 `yaml:"center_lng" mapstructure:"center_lng"`
}

// ClipConfig configures the clipping step.
type ClipConfig struct {
	// Streets controls whether the streets layer is clipped to the
	// boundary. Street extracts normally arrive pre-clipped.
	Streets bool `yaml:"streets" mapstructure:"streets"`
}

// SimplifyConfig configures geometry simplification.
type SimplifyConfig struct {
	Tolerance float64  `yaml:"tolerance" mapstructure:"tolerance"`
	KeepProps []string `yaml:"keep_props" mapstructure:"keep_props"`
}

// TigerWebConfig configures the Census TIGERweb client.
type TigerWebConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Rate        float64 `yaml:"rate" mapstructure:"rate"`
	Burst       int     `yaml:"burst" mapstructure:"burst"`
	Concurrency int     `yaml:"concurrency" mapstructure:"concurrency"`
	StateFIPS   string  `yaml:"state_fips" mapstructure:"state_fips"`
}

// CacheConfig configures the tract fetch cache.
type CacheConfig struct {
	Path     string `yaml:"path" mapstructure:"path"`
	TTLHours int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// StoreConfig configures the optional PostGIS sink.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Table       string `yaml:"table" mapstructure:"table"`
}

// ServeConfig configures the field-use file server.
type ServeConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// MarketsConfig points at per-market layer definitions.
type MarketsConfig struct {
	File string `yaml:"file" mapstructure:"file"`
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
	v.SetEnvPrefix("FIELDMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("inputs.boundary", "dominion_service_area.geojson")
	v.SetDefault("inputs.opportunity_zones", "virginia_opportunity_zones_vedp.geojson")
	v.SetDefault("inputs.qct", "virginia_qct_2025.geojson")
	v.SetDefault("inputs.streets", "batch_extracted_streets.geojson")
	v.SetDefault("output.html", "verify_official_zones.html")
	v.SetDefault("output.dir", ".")
	v.SetDefault("map.title", "Market Map")
	v.SetDefault("map.zoom", 8)
	v.SetDefault("map.center_lat", 37.5)
	v.SetDefault("map.center_lng", -79.0)
	v.SetDefault("clip.streets", false)
	v.SetDefault("simplify.tolerance", 0.002)
	v.SetDefault("simplify.keep_props", []string{"NAME", "GEOID", "COUNTY_NAME"})
	v.SetDefault("tigerweb.base_url", "https://tigerweb.geo.census.gov/arcgis/rest/services/TIGERweb/tigerWMS_Current/MapServer")
	v.SetDefault("tigerweb.user_agent", "fieldmap/1.0")
	v.SetDefault("tigerweb.timeout_secs", 30)
	v.SetDefault("tigerweb.rate", 4)
	v.SetDefault("tigerweb.burst", 4)
	v.SetDefault("tigerweb.concurrency", 4)
	v.SetDefault("tigerweb.state_fips", "51")
	v.SetDefault("cache.path", "fieldmap_cache.db")
	v.SetDefault("cache.ttl_hours", 168)
	v.SetDefault("store.table", "public.market_layers")
	v.SetDefault("serve.port", 8080)
	v.SetDefault("markets.file", "markets.yaml")
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

// Validate checks the configuration for the given command mode.
func (c *Config) Validate(mode string) error {
	var missing []string

	switch mode {
	case "build":
		if c.Inputs.Boundary == "" {
			missing = append(missing, "inputs.boundary is required")
		}
		if c.Output.HTML == "" {
			missing = append(missing, "output.html is required")
		}
	case "tracts":
		if c.TigerWeb.BaseURL == "" {
			missing = append(missing, "tigerweb.base_url is required")
		}
		if len(c.TigerWeb.StateFIPS) != 2 {
			missing = append(missing, "tigerweb.state_fips must be a 2-digit FIPS code")
		}
	case "load":
		if c.Store.DatabaseURL == "" {
			missing = append(missing, "store.database_url is required")
		}
		if c.Store.Table == "" {
			missing = append(missing, "store.table is required")
		}
	case "serve":
		if c.Serve.Port <= 0 {
			missing = append(missing, "serve.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Simplify.Tolerance < 0 {
		missing = append(missing, "simplify.tolerance must be >= 0")
	}

	if len(missing) > 0 {
		return eris.Errorf("config: invalid for %s: %s", mode, strings.Join(missing, "; "))
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
