package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/metric-atlas/pkg/models/domain"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const envPrefix = "METRIC_ATLAS"

type Config struct {
	LogLevel  string          `mapstructure:"log_level" validate:"oneof=trace debug info warn error disabled"`
	Server    ServerConfig    `mapstructure:"server"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes" validate:"gt=0"`
}

type DashboardConfig struct {
	Mode         string              `mapstructure:"mode" validate:"oneof=week month"`
	Metric       string              `mapstructure:"metric"`
	Watched      []string            `mapstructure:"watched"`
	CalcColumns  []domain.CalcColumn `mapstructure:"calc_columns" validate:"dive"`
	ProfilesPath string              `mapstructure:"profiles_path"`
	Profile      string              `mapstructure:"profile" validate:"required_with=ProfilesPath"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c DashboardConfig) PeriodMode() domain.PeriodMode {
	return domain.PeriodMode(c.Mode)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_upload_bytes", 32<<20)
	v.SetDefault("dashboard.mode", string(domain.PeriodWeek))
	v.SetDefault("dashboard.metric", "")
	v.SetDefault("dashboard.profiles_path", "")
	v.SetDefault("dashboard.profile", "")
}

// LoadConfig reads the YAML file at path, if any, over the built-in defaults.
// METRIC_ATLAS_* environment variables override both, e.g. METRIC_ATLAS_SERVER_PORT.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Dashboard.Mode = strings.ToLower(strings.TrimSpace(cfg.Dashboard.Mode))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks the struct tags of cfg and reports every failing field.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
