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
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Ingest  IngestConfig  `yaml:"ingest" mapstructure:"ingest"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	News    NewsConfig    `yaml:"news" mapstructure:"news"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the embedded database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// IngestConfig configures directory ingestion.
type IngestConfig struct {
	InputDir       string `yaml:"input_dir" mapstructure:"input_dir"`
	SourceLocation string `yaml:"source_location" mapstructure:"source_location"`
	HeaderScanRows int    `yaml:"header_scan_rows" mapstructure:"header_scan_rows"`
	MappingPath    string `yaml:"mapping_path" mapstructure:"mapping_path"`
}

// ExtractConfig configures unstructured document text extraction.
type ExtractConfig struct {
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
}

// NewsConfig configures news article import.
type NewsConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
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
	v.SetEnvPrefix("AUCTION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.path", "market_reports.db")
	v.SetDefault("ingest.source_location", "Mombasa")
	v.SetDefault("ingest.header_scan_rows", 20)
	v.SetDefault("extract.pdftotext_path", "pdftotext")
	v.SetDefault("news.similarity_threshold", 0.9)
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

// Validate checks that the fields required by the given command mode are
// present and sane. All problems are reported at once.
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.Store.Path == "" {
		problems = append(problems, "store.path is required")
	}

	switch mode {
	case "ingest":
		if c.Ingest.InputDir == "" {
			problems = append(problems, "ingest.input_dir is required")
		}
		if c.Ingest.SourceLocation == "" {
			problems = append(problems, "ingest.source_location is required")
		}
		if c.Ingest.HeaderScanRows < 1 || c.Ingest.HeaderScanRows > 100 {
			problems = append(problems, "ingest.header_scan_rows must be between 1 and 100")
		}
	case "news":
		if c.News.SimilarityThreshold < 0 || c.News.SimilarityThreshold > 1 {
			problems = append(problems, "news.similarity_threshold must be between 0 and 1")
		}
	case "store":
		// store.path check above is sufficient
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
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
