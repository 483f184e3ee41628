package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"cargo-tracker/internal/core/proxy"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
// - validate: go-playground rules, including cross-field ones
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080" validate:"min=1,max=65535"`

	// Storage selects and configures the ledger and shipment stores.
	Storage StorageConfig `mapstructure:",squash"`

	// Notifications configures the customer notification pipeline.
	Notifications NotificationConfig `mapstructure:",squash"`

	// Carrier configures the carrier milestone feed.
	Carrier CarrierConfig `mapstructure:",squash"`

	// Proxy holds the upstream proxy for carrier traffic.
	Proxy ProxyConfig `mapstructure:",squash"`
}

// StorageConfig holds the backing store selection.
type StorageConfig struct {
	// Backend is one of memory, redis or postgres.
	Backend string `mapstructure:"LEDGER_BACKEND" default:"memory" validate:"oneof=memory redis postgres"`
	// RedisURL is a redis:// URL; required for the redis backend.
	RedisURL string `mapstructure:"REDIS_URL" validate:"required_if=Backend redis,omitempty,url"`
	// DatabaseDSN is a postgres DSN; required for the postgres backend.
	DatabaseDSN string `mapstructure:"DATABASE_DSN" validate:"required_if=Backend postgres"`
}

// NotificationConfig holds the notification sender selection.
type NotificationConfig struct {
	// Sender is one of log, kafka or webhook.
	Sender string `mapstructure:"NOTIFY_SENDER" default:"log" validate:"oneof=log kafka webhook"`
	// KafkaBrokers is a comma separated broker list.
	KafkaBrokers []string `mapstructure:"KAFKA_BROKERS" validate:"required_if=Sender kafka"`
	// KafkaTopic receives container status CloudEvents.
	KafkaTopic string `mapstructure:"KAFKA_TOPIC" default:"container-status-changed"`
	// WebhookURL receives container status CloudEvents over HTTP.
	WebhookURL string `mapstructure:"NOTIFY_WEBHOOK_URL" validate:"required_if=Sender webhook,omitempty,url"`
	// QueueSize bounds notifications waiting for a worker.
	QueueSize int `mapstructure:"NOTIFY_QUEUE_SIZE" default:"256" validate:"min=1"`
	// Workers is the number of delivery goroutines.
	Workers int `mapstructure:"NOTIFY_WORKERS" default:"4" validate:"min=1"`
	// SendTimeout bounds a single delivery.
	SendTimeout time.Duration `mapstructure:"NOTIFY_SEND_TIMEOUT" default:"10s"`
}

// CarrierConfig holds the carrier feed settings. An empty FeedURL disables carrier sync.
type CarrierConfig struct {
	// FeedURL is the carrier tracking page; %s is replaced by the container number.
	FeedURL string `mapstructure:"CARRIER_FEED_URL" validate:"omitempty,url"`
	// APIPattern matches the page request that returns the event list.
	APIPattern string `mapstructure:"CARRIER_API_PATTERN"`
	// CacheTTL is how long a feed result is reused. Needs REDIS_URL.
	CacheTTL time.Duration `mapstructure:"CARRIER_CACHE_TTL" default:"5m"`
	// Timeout bounds one browser fetch.
	Timeout time.Duration `mapstructure:"CARRIER_TIMEOUT" default:"60s"`
}

// ProxyConfig holds the upstream proxy used for carrier traffic.
type ProxyConfig struct {
	Enabled  bool   `mapstructure:"PROXY_ENABLED" default:"false"`
	Hostname string `mapstructure:"PROXY_HOSTNAME" validate:"required_if=Enabled true"`
	Port     int    `mapstructure:"PROXY_PORT" validate:"required_if=Enabled true"`
	Username string `mapstructure:"PROXY_USERNAME"`
	Password string `mapstructure:"PROXY_PASSWORD"`
}

// Settings converts the configuration into proxy settings.
func (p ProxyConfig) Settings() proxy.Settings {
	return proxy.Settings{
		Enabled:  p.Enabled,
		Hostname: p.Hostname,
		Port:     p.Port,
		Username: p.Username,
		Password: p.Password,
	}
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	if err := validateRules(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags iterates over the struct fields, binds env keys and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			if err := v.BindEnv(key); err != nil {
				return fmt.Errorf("failed to bind %s: %w", key, err)
			}
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		required := field.Tag.Get("required")
		if required == "true" {
			value := val.Field(i)
			if isZero(value) {
				key := field.Tag.Get("mapstructure")
				return fmt.Errorf("missing required configuration: %s", key)
			}
		}
	}
	return nil
}

// validateRules runs the validate tags and reports violations by env key.
func validateRules(config *AppConfig) error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("mapstructure")
	})

	err := v.Struct(config)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required_if":
			problems = append(problems, fmt.Sprintf("%s is required when %s", fe.Field(), strings.Replace(fe.Param(), " ", "=", 1)))
		case "oneof":
			problems = append(problems, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		default:
			problems = append(problems, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
