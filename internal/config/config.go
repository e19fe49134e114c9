package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/bakeoff/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Models     model.Models     `yaml:"models" mapstructure:"models"`
	Inputs     InputsConfig     `yaml:"inputs" mapstructure:"inputs"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Bootstrap  BootstrapConfig  `yaml:"bootstrap" mapstructure:"bootstrap"`
	Stratify   StratifyConfig   `yaml:"stratify" mapstructure:"stratify"`
	SignedRank SignedRankConfig `yaml:"signedrank" mapstructure:"signedrank"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Metrics    MetricsConfig    `yaml:"metrics" mapstructure:"metrics"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// InputsConfig names the tables the commands read.
type InputsConfig struct {
	LeftSummary  string `yaml:"left_summary" mapstructure:"left_summary"`
	RightSummary string `yaml:"right_summary" mapstructure:"right_summary"`
	Bakeoff      string `yaml:"bakeoff" mapstructure:"bakeoff"`
	WilsonsCSV   string `yaml:"wilsons_csv" mapstructure:"wilsons_csv"`
	WilsonsJSON  string `yaml:"wilsons_json" mapstructure:"wilsons_json"`
	AllStatus    bool   `yaml:"all_status" mapstructure:"all_status"` // keep fits whose fit_status is not OK
}

// OutputConfig names the files the commands write.
type OutputConfig struct {
	Comparison string `yaml:"comparison" mapstructure:"comparison"`
	Evidence   string `yaml:"evidence" mapstructure:"evidence"`
	ReportDir  string `yaml:"report_dir" mapstructure:"report_dir"`
	Strata     string `yaml:"strata" mapstructure:"strata"`
}

// BootstrapConfig configures the Hodges–Lehmann bootstrap.
type BootstrapConfig struct {
	Resamples  int     `yaml:"resamples" mapstructure:"resamples"`
	Confidence float64 `yaml:"confidence" mapstructure:"confidence"`
	Seed       uint64  `yaml:"seed" mapstructure:"seed"`
}

// StratifyConfig configures covariate stratification.
type StratifyConfig struct {
	Covariates []string `yaml:"covariates" mapstructure:"covariates"`
}

// SignedRankConfig configures the Wilcoxon signed-rank test.
type SignedRankConfig struct {
	MinN      int `yaml:"min_n" mapstructure:"min_n"`
	ExactMaxN int `yaml:"exact_max_n" mapstructure:"exact_max_n"`
}

// StoreConfig configures the run archive.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Schema      string `yaml:"schema" mapstructure:"schema"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// MetricsConfig configures the Prometheus textfile output.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" mapstructure:"textfile"`
}

// Load reads configuration from .env, config file and environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BAKEOFF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("models.left", model.DefaultModels.Left)
	v.SetDefault("models.right", model.DefaultModels.Right)
	v.SetDefault("inputs.left_summary", "egr_out/tables/summary.csv")
	v.SetDefault("inputs.right_summary", "lcdm_out/tables/summary.csv")
	v.SetDefault("inputs.bakeoff", "bakeoff.csv")
	v.SetDefault("inputs.wilsons_csv", "out/tables/wilsons_fixedmu.csv")
	v.SetDefault("inputs.wilsons_json", "out/tables/wilsons_fixedmu.json")
	v.SetDefault("inputs.all_status", false)
	v.SetDefault("output.comparison", "bakeoff_dedup.csv")
	v.SetDefault("output.evidence", "bakeoff_evidence_table.csv")
	v.SetDefault("output.report_dir", "out/tables/report")
	v.SetDefault("output.strata", "out/tables/report/strata.csv")
	v.SetDefault("bootstrap.resamples", 1500)
	v.SetDefault("bootstrap.confidence", 0.95)
	v.SetDefault("bootstrap.seed", 42)
	v.SetDefault("stratify.covariates", []string{"n_outer", "r2_outer", "R_max", "finite_outer"})
	v.SetDefault("signedrank.min_n", 10)
	v.SetDefault("signedrank.exact_max_n", 50)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "bakeoff.db")
	v.SetDefault("store.schema", "")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("metrics.textfile", "")

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

// Validate checks the settings a command depends on.
func (c *Config) Validate(mode string) error {
	var errs []string

	if c.Models.Left == "" || c.Models.Right == "" {
		errs = append(errs, "models.left and models.right are required")
	} else if c.Models.Left == c.Models.Right {
		errs = append(errs, "models.left and models.right must differ")
	}

	switch mode {
	case "hl", "report":
		if c.Bootstrap.Resamples < 1 {
			errs = append(errs, "bootstrap.resamples must be >= 1")
		}
		if c.Bootstrap.Confidence <= 0 || c.Bootstrap.Confidence >= 1 {
			errs = append(errs, "bootstrap.confidence must be in (0, 1)")
		}
		if mode == "report" && c.SignedRank.MinN < 1 {
			errs = append(errs, "signedrank.min_n must be >= 1")
		}
	case "save", "runs":
		if c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
			errs = append(errs, "store.driver must be sqlite or postgres")
		}
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	case "compare", "evidence", "stratify":
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
