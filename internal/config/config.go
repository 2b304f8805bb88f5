package config

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/i94-warehouse/internal/derive"
	"github.com/sells-group/i94-warehouse/internal/quality"
	"github.com/sells-group/i94-warehouse/internal/runlog"
	"github.com/sells-group/i94-warehouse/internal/source"
)

// Config holds the full application configuration.
type Config struct {
	Input    InputConfig    `yaml:"input" mapstructure:"input"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Storage  StorageConfig  `yaml:"storage" mapstructure:"storage"`
	Quality  QualityConfig  `yaml:"quality" mapstructure:"quality"`
	Airports AirportsConfig `yaml:"airports" mapstructure:"airports"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	RunLog   RunLogConfig   `yaml:"runlog" mapstructure:"runlog"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// InputConfig locates every raw dataset.
type InputConfig struct {
	Immigration  SourceConfig `yaml:"immigration" mapstructure:"immigration"`
	Temperature  SourceConfig `yaml:"temperature" mapstructure:"temperature"`
	Demographics SourceConfig `yaml:"demographics" mapstructure:"demographics"`
	Airports     SourceConfig `yaml:"airports" mapstructure:"airports"`
	CountryCodes SourceConfig `yaml:"country_codes" mapstructure:"country_codes"`
	States       SourceConfig `yaml:"states" mapstructure:"states"`
}

// SourceConfig describes one input file or directory.
type SourceConfig struct {
	Path      string `yaml:"path" mapstructure:"path"`
	Format    string `yaml:"format" mapstructure:"format"`
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter"`
	Header    bool   `yaml:"header" mapstructure:"header"`
}

// Comma returns the field delimiter as a rune. "tab" and "\t" name a tab; an empty
// delimiter means a comma.
func (s SourceConfig) Comma() rune {
	switch s.Delimiter {
	case "":
		return ','
	case "tab", `\t`:
		return '\t'
	}
	r, _ := utf8.DecodeRuneInString(s.Delimiter)
	return r
}

// Input converts the configuration to a source.Input.
func (s SourceConfig) Input() source.Input {
	return source.Input{
		Path:       s.Path,
		Format:     s.Format,
		CSVOptions: source.CSVOptions{Delimiter: s.Comma(), Header: s.Header},
	}
}

// OutputConfig configures where tables are written.
type OutputConfig struct {
	Root string `yaml:"root" mapstructure:"root"`
}

// StorageConfig holds object-storage credentials.
type StorageConfig struct {
	S3 S3Config `yaml:"s3" mapstructure:"s3"`
}

// S3Config configures the S3 client used for s3:// output roots.
type S3Config struct {
	Region          string `yaml:"region" mapstructure:"region"`
	Endpoint        string `yaml:"endpoint" mapstructure:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id" mapstructure:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" mapstructure:"secret_access_key"`
	ForcePathStyle  bool   `yaml:"force_path_style" mapstructure:"force_path_style"`
}

// QualityConfig configures the row filter and the post-write gate.
type QualityConfig struct {
	OnEmpty string `yaml:"on_empty" mapstructure:"on_empty"`
	// Required overrides the default required-column list per dataset.
	Required map[string][]string `yaml:"required" mapstructure:"required"`
}

// AirportsConfig configures the airport dimension.
type AirportsConfig struct {
	CoordinateOrder string `yaml:"coordinate_order" mapstructure:"coordinate_order"`
	Country         string `yaml:"country" mapstructure:"country"`
}

// PipelineConfig configures dataset execution.
type PipelineConfig struct {
	Concurrency int      `yaml:"concurrency" mapstructure:"concurrency"`
	Datasets    []string `yaml:"datasets" mapstructure:"datasets"`
}

// RunLogConfig selects the run log backend.
type RunLogConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
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
	v.SetEnvPrefix("I94")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("input.immigration.path", "data/i94_apr16_sub")
	v.SetDefault("input.immigration.format", source.FormatParquet)
	v.SetDefault("input.immigration.delimiter", ",")
	v.SetDefault("input.immigration.header", true)
	v.SetDefault("input.temperature.path", "data/GlobalLandTemperaturesByCity.csv")
	v.SetDefault("input.temperature.format", source.FormatCSV)
	v.SetDefault("input.temperature.delimiter", ",")
	v.SetDefault("input.temperature.header", true)
	v.SetDefault("input.demographics.path", "data/us-cities-demographics.csv")
	v.SetDefault("input.demographics.format", source.FormatCSV)
	v.SetDefault("input.demographics.delimiter", ";")
	v.SetDefault("input.demographics.header", true)
	v.SetDefault("input.airports.path", "data/airport-codes_csv.csv")
	v.SetDefault("input.airports.format", source.FormatCSV)
	v.SetDefault("input.airports.delimiter", ",")
	v.SetDefault("input.airports.header", true)
	v.SetDefault("input.country_codes.path", "data/valid_i94cit_i94res.txt")
	v.SetDefault("input.country_codes.format", source.FormatCSV)
	v.SetDefault("input.country_codes.delimiter", ";")
	v.SetDefault("input.country_codes.header", true)
	v.SetDefault("input.states.path", "data/statelatlong.csv")
	v.SetDefault("input.states.format", source.FormatCSV)
	v.SetDefault("input.states.delimiter", ",")
	v.SetDefault("input.states.header", true)
	v.SetDefault("output.root", "output")
	v.SetDefault("storage.s3.region", "us-west-2")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.access_key_id", "")
	v.SetDefault("storage.s3.secret_access_key", "")
	v.SetDefault("storage.s3.force_path_style", false)
	v.SetDefault("quality.on_empty", string(quality.Fail))
	v.SetDefault("airports.coordinate_order", string(derive.LonLat))
	v.SetDefault("airports.country", "US")
	v.SetDefault("pipeline.concurrency", 4)
	v.SetDefault("runlog.driver", runlog.DriverSQLite)
	v.SetDefault("runlog.dsn", "i94etl.db")
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

const maxConcurrency = 16

// Validate checks enumerations and bounds. Every problem found is reported.
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Output.Root) == "" {
		errs = append(errs, "output.root is required")
	}
	if strings.HasPrefix(c.Output.Root, "s3://") &&
		(c.Storage.S3.AccessKeyID == "" || c.Storage.S3.SecretAccessKey == "") {
		errs = append(errs, "storage.s3.access_key_id and storage.s3.secret_access_key are required for s3:// output")
	}

	switch strings.ToLower(c.Input.Immigration.Format) {
	case source.FormatCSV, source.FormatParquet:
	default:
		errs = append(errs, "input.immigration.format must be csv or parquet")
	}
	for name, in := range map[string]SourceConfig{
		"immigration":   c.Input.Immigration,
		"temperature":   c.Input.Temperature,
		"demographics":  c.Input.Demographics,
		"airports":      c.Input.Airports,
		"country_codes": c.Input.CountryCodes,
		"states":        c.Input.States,
	} {
		if strings.TrimSpace(in.Path) == "" {
			errs = append(errs, "input."+name+".path is required")
		}
		if name != "immigration" && in.Format != "" && !strings.EqualFold(in.Format, source.FormatCSV) {
			errs = append(errs, "input."+name+".format must be csv")
		}
		if in.Delimiter != "" && in.Delimiter != "tab" && in.Delimiter != `\t` && utf8.RuneCountInString(in.Delimiter) != 1 {
			errs = append(errs, "input."+name+".delimiter must be a single character")
		}
	}

	if _, err := quality.ParseOnEmpty(c.Quality.OnEmpty); err != nil {
		errs = append(errs, "quality.on_empty must be warn or fail")
	}
	if _, err := derive.ParseCoordinateOrder(c.Airports.CoordinateOrder); err != nil {
		errs = append(errs, "airports.coordinate_order must be lonlat or latlon")
	}
	if c.Pipeline.Concurrency < 1 || c.Pipeline.Concurrency > maxConcurrency {
		errs = append(errs, "pipeline.concurrency must be between 1 and 16")
	}
	switch strings.ToLower(c.RunLog.Driver) {
	case runlog.DriverSQLite, runlog.DriverPostgres:
		if c.RunLog.DSN == "" {
			errs = append(errs, "runlog.dsn is required for the "+c.RunLog.Driver+" driver")
		}
	case runlog.DriverNone:
	default:
		errs = append(errs, "runlog.driver must be sqlite, postgres or none")
	}

	if len(errs) > 0 {
		sort.Strings(errs)
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
