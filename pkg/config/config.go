package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	xutil "StorkPull/pkg/util"
)

type Account struct {
	Region     string `yaml:"region" default:"ap-northeast-1" validate:"required"`
	ClientID   string `yaml:"clientId" default:"5msns4n49hmg3dftp2tp1t2iuh" validate:"required"`
	UserPoolID string `yaml:"userPoolId" default:"ap-northeast-1_M22I44OpC" validate:"required,contains=_"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	MaxProxies int    `yaml:"maxProxies" default:"1" validate:"gte=0"`
}

type Config struct {
	Accounts []Account `yaml:"accounts" validate:"dive"`
	Stork    struct {
		BaseURL          string        `yaml:"baseURL" default:"https://app-api.jp.stork-oracle.network/v1" validate:"required,url"`
		AuthURL          string        `yaml:"authURL" default:"https://api.jp.stork-oracle.network/auth"`
		IntervalSeconds  int           `yaml:"intervalSeconds" default:"10" validate:"gt=0"`
		RequestTimeout   time.Duration `yaml:"requestTimeout" default:"30s"`
		RotationInterval time.Duration `yaml:"rotationInterval" default:"1h"`
		UserAgent        string        `yaml:"userAgent" default:"Mozilla/5.0 (Node)"`
		Origin           string        `yaml:"origin" default:"chrome-extension://knnliglhgkmlblppdejchidfihjnockl"`
		AuthFlow         string        `yaml:"authFlow" default:"USER_SRP_AUTH" validate:"oneof=USER_SRP_AUTH USER_PASSWORD_AUTH"`
	} `yaml:"stork"`
	Threads struct {
		MaxWorkers int `yaml:"maxWorkers" default:"10" validate:"gt=0"`
	} `yaml:"threads"`
	Proxies struct {
		File string `yaml:"file" default:"proxies.txt"`
	} `yaml:"proxies"`
	Session struct {
		Backend string `yaml:"backend" default:"file" validate:"oneof=file redis memory"`
		Dir     string `yaml:"dir" default:"."`
		Redis   struct {
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"storkpull"`
		} `yaml:"redis"`
	} `yaml:"session"`
	Server struct {
		Enabled         bool          `yaml:"enabled"`
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"readTimeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"writeTimeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdownTimeout" default:"5s"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
}

// Interval is the validation-cycle period.
func (c *Config) Interval() time.Duration {
	return xutil.Seconds(c.Stork.IntervalSeconds, 10*time.Second)
}

// defaultFile is written when no config exists yet. JSON is valid YAML,
// so the same text serves both extensions.
const defaultFile = `{
  "accounts": [
    {
      "region": "ap-northeast-1",
      "clientId": "5msns4n49hmg3dftp2tp1t2iuh",
      "userPoolId": "ap-northeast-1_M22I44OpC",
      "username": "",
      "password": "",
      "maxProxies": 1
    }
  ],
  "stork": {
    "baseURL": "https://app-api.jp.stork-oracle.network/v1",
    "authURL": "https://api.jp.stork-oracle.network/auth",
    "intervalSeconds": 10
  },
  "threads": {
    "maxWorkers": 10
  }
}
`

var validate = validator.New()

// ErrCreatedDefault is returned alongside a usable config when the file
// did not exist and a default one was written.
var ErrCreatedDefault = errors.New("config: default file created")

// Parse decodes raw config bytes. name selects JSONC handling by extension.
func Parse(name string, b []byte) (*Config, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".jsonc":
		b = jsonc.ToJSON(b)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML or JSON configuration file. A missing file
// is replaced by a default one; the parsed default is returned together
// with ErrCreatedDefault.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(path, []byte(defaultFile), 0o600); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
		c, err := Parse(path, []byte(defaultFile))
		if err != nil {
			return nil, err
		}
		return c, ErrCreatedDefault
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(path, b)
}

// LoadWithEnv loads config from file and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil && !errors.Is(err, ErrCreatedDefault) {
		return nil, err
	}

	if v := os.Getenv("STORK_BASE_URL"); v != "" {
		c.Stork.BaseURL = v
	}
	if v := os.Getenv("STORK_INTERVAL_SECONDS"); v != "" {
		c.Stork.IntervalSeconds = xutil.ParseIntDefault(v, c.Stork.IntervalSeconds)
	}
	if v := os.Getenv("STORK_MAX_WORKERS"); v != "" {
		c.Threads.MaxWorkers = xutil.ParseIntDefault(v, c.Threads.MaxWorkers)
	}
	if v := os.Getenv("STORK_PROXY_FILE"); v != "" {
		c.Proxies.File = v
	}
	if v := os.Getenv("STORK_SESSION_DIR"); v != "" {
		c.Session.Dir = v
	}
	if v := os.Getenv("STORK_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}

	if verr := c.Validate(); verr != nil {
		return nil, fmt.Errorf("validate config: %w", verr)
	}
	return c, err
}

// Validate checks if the configuration is valid. Accounts without
// credentials are not an error here; they are skipped at startup.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	return nil
}
