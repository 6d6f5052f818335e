package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const defaultPath = "."

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port     int `json:"port" yaml:"port"`
		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	// CheckIn configuration for the check-in lifecycle
	CheckIn *CheckInConfig `json:"checkIn" yaml:"checkIn"`

	// Notification configuration for the outbound webhook
	Notification *NotificationConfig `json:"notification" yaml:"notification"`

	// Storage configuration for the local snapshot database
	Storage *StorageConfig `json:"storage" yaml:"storage"`

	// Points is the ordered check-in point catalog, grouped by period.
	Points []PointConfig `json:"points" yaml:"points" validate:"dive"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// CheckInConfig defines the tunables of the check-in lifecycle
type CheckInConfig struct {
	// Maximum distance in meters between the user and a point for check-in
	DistanceThresholdMeters float64 `json:"distanceThresholdMeters" yaml:"distanceThresholdMeters"`

	// Mandatory hold between photo capture and permitted finalization
	HoldDuration time.Duration `json:"holdDuration" yaml:"holdDuration"`

	// How long a successful submission stays visible before the record is cleared
	ConfirmationDelay time.Duration `json:"confirmationDelay" yaml:"confirmationDelay"`

	// How long transient error banners stay visible
	ErrorBannerDelay time.Duration `json:"errorBannerDelay" yaml:"errorBannerDelay"`

	// Interval between clock ticks fed to the lifecycle
	TickInterval time.Duration `json:"tickInterval" yaml:"tickInterval"`
}

// NotificationConfig defines the outbound webhook notification settings
type NotificationConfig struct {
	// WebhookURL is the endpoint finalized check-ins are posted to.
	// Leaving it empty makes every submit fail with a configuration error.
	WebhookURL string `json:"webhookUrl" yaml:"webhookUrl"`

	// ChatID is the target chat/channel identifier carried in the payload
	ChatID string `json:"chatId" yaml:"chatId"`

	// Timezone used when formatting check-in/check-out instants, e.g. "Asia/Bangkok"
	Timezone string `json:"timezone" yaml:"timezone"`
}

// StorageConfig defines where the snapshot database lives
type StorageConfig struct {
	Path string `json:"path" yaml:"path"`
}

// PointConfig defines a single check-in point catalog entry
type PointConfig struct {
	ID        int     `json:"id" yaml:"id" validate:"required"`
	PeriodID  string  `json:"periodId" yaml:"periodId" validate:"required"`
	Name      string  `json:"name" yaml:"name" validate:"required"`
	Latitude  float64 `json:"latitude" yaml:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" yaml:"longitude" validate:"min=-180,max=180"`
	StartTime string  `json:"startTime" yaml:"startTime" validate:"required,len=5"`
	EndTime   string  `json:"endTime" yaml:"endTime" validate:"required,len=5"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: NOTIFICATION_WEBHOOKURL -> notification.webhookUrl
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "validate config failed")
	}

	return cfg, nil
}

// applyDefaults fills in the check-in lifecycle defaults for anything
// the config file leaves unset.
func (c *Config) applyDefaults() {
	if c.CheckIn == nil {
		c.CheckIn = &CheckInConfig{}
	}
	if c.CheckIn.DistanceThresholdMeters <= 0 {
		c.CheckIn.DistanceThresholdMeters = 200
	}
	if c.CheckIn.HoldDuration <= 0 {
		c.CheckIn.HoldDuration = 16 * time.Minute
	}
	if c.CheckIn.ConfirmationDelay <= 0 {
		c.CheckIn.ConfirmationDelay = 2 * time.Second
	}
	if c.CheckIn.ErrorBannerDelay <= 0 {
		c.CheckIn.ErrorBannerDelay = 5 * time.Second
	}
	if c.CheckIn.TickInterval <= 0 {
		c.CheckIn.TickInterval = time.Second
	}

	if c.Notification == nil {
		c.Notification = &NotificationConfig{}
	}
	if c.Notification.Timezone == "" {
		c.Notification.Timezone = "Asia/Bangkok"
	}

	if c.Storage == nil {
		c.Storage = &StorageConfig{}
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "checkin.db"
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
