package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"DefiPrime/internal/service/payload"
	"DefiPrime/pkg/util"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Log         struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`

	// Entities replaces the interactive prompt of pool ids.
	Entities []string `yaml:"entities" validate:"omitempty,unique,dive,required"`

	Source struct {
		Type        string         `yaml:"type" default:"llama" validate:"oneof=llama clickhouse file"`
		BaseURL     string         `yaml:"base_url" default:"https://yields.llama.fi/chart/"`
		Timeout     time.Duration  `yaml:"timeout" default:"30s"`
		Concurrency int            `yaml:"concurrency" default:"1" validate:"gte=1,lte=64"`
		Dir         string         `yaml:"dir"`
		Table       string         `yaml:"table" default:"pool_history" validate:"ident"`
		Fields      payload.Fields `yaml:"fields"`
		RateLimit   struct {
			RPS   float64 `yaml:"rps" default:"5" validate:"gte=0"`
			Burst int     `yaml:"burst" default:"1" validate:"gte=1"`
		} `yaml:"rate_limit"`
		Breaker struct {
			MaxRequests         uint32        `yaml:"max_requests" default:"1"`
			Interval            time.Duration `yaml:"interval" default:"1m"`
			Timeout             time.Duration `yaml:"timeout" default:"30s"`
			ConsecutiveFailures uint32        `yaml:"consecutive_failures" default:"5" validate:"gte=1"`
		} `yaml:"breaker"`
	} `yaml:"source"`

	// TVL configures the protocol locked-value report.
	TVL struct {
		BaseURL   string   `yaml:"base_url" default:"https://api.llama.fi/protocol/" validate:"required,url"`
		Protocols []string `yaml:"protocols" validate:"omitempty,unique,dive,required"`
		ListPath  string   `yaml:"list_path" default:"tvl" validate:"required"`
		Timestamp string   `yaml:"timestamp" default:"date" validate:"required"`
		Value     string   `yaml:"value" default:"totalLiquidityUSD" validate:"required"`
	} `yaml:"tvl"`

	Pipeline struct {
		TrendWindow     int    `yaml:"trend_window" default:"14" validate:"gte=1"`
		DisplayDays     int    `yaml:"display_days" default:"360" validate:"gte=1"`
		DuplicatePolicy string `yaml:"duplicate_policy" default:"last" validate:"oneof=last first"`
	} `yaml:"pipeline"`

	Sink struct {
		Type    string `yaml:"type" default:"console" validate:"oneof=console csv json kafka"`
		Path    string `yaml:"path"`
		Preview int    `yaml:"preview" default:"5" validate:"gte=0"`
	} `yaml:"sink"`

	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"defiprime.composite"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"1s"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		} `yaml:"producer"`
	} `yaml:"kafka"`

	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"defiprime" validate:"ident"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`
}

var (
	validate = newValidator()
	identRe  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// newValidator registers "ident", a plain SQL identifier usable unquoted in a
// ClickHouse query.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
		return identRe.MatchString(fl.Field().String())
	})
	return v
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML, applies defaults and validates.
func Parse(b []byte) (*Config, error) {
	c, err := decode(b)
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads .env (if present), the YAML file, then applies
// environment overrides. It does not validate, so callers can layer further
// overrides (command line flags) before calling Validate.
func LoadWithEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := decode(b)
	if err != nil {
		return nil, err
	}

	c.applyEnv()
	return c, nil
}

func decode(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ENTITIES"); v != "" {
		c.Entities = splitList(v)
	}
	if v := os.Getenv("TVL_PROTOCOLS"); v != "" {
		c.TVL.Protocols = splitList(v)
	}
	if v := os.Getenv("SOURCE_TYPE"); v != "" {
		c.Source.Type = v
	}
	if v := os.Getenv("SOURCE_BASE_URL"); v != "" {
		c.Source.BaseURL = v
	}
	c.Source.Concurrency = util.ParseIntDefault(os.Getenv("SOURCE_CONCURRENCY"), c.Source.Concurrency)
	if v := os.Getenv("SINK_TYPE"); v != "" {
		c.Sink.Type = v
	}
	if v := os.Getenv("SINK_PATH"); v != "" {
		c.Sink.Path = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// TVLFields are the payload paths of the protocol endpoint. It carries no rate.
func (c *Config) TVLFields() payload.Fields {
	return payload.Fields{ListPath: c.TVL.ListPath, Timestamp: c.TVL.Timestamp, Value: c.TVL.Value}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Source.Fields == (payload.Fields{}) {
		c.Source.Fields = payload.DefaultFields
	}
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%s failed on '%s'", verrs[0].Namespace(), verrs[0].Tag())
		}
		return err
	}
	if len(c.Entities) == 0 && len(c.TVL.Protocols) == 0 {
		return fmt.Errorf("entities or tvl.protocols must list at least one id")
	}

	switch c.Source.Type {
	case "file":
		if c.Source.Dir == "" {
			return fmt.Errorf("source.dir is required for source.type 'file'")
		}
	case "clickhouse":
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required for source.type 'clickhouse'")
		}
	}

	switch c.Sink.Type {
	case "csv", "json":
		if c.Sink.Path == "" {
			return fmt.Errorf("sink.path is required for sink.type '%s'", c.Sink.Type)
		}
	case "kafka":
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty for sink.type 'kafka'")
		}
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
