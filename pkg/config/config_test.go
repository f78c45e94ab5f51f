package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestParseJSONWithComments(t *testing.T) {
	raw := []byte(`{
  // two accounts, the second without credentials
  "accounts": [
    {"username": "a@x.io", "password": "pw", "maxProxies": 2},
    {"username": "", "password": ""}
  ],
  "stork": {"baseURL": "https://example.test/v1", "intervalSeconds": 5},
  /* fan-out */
  "threads": {"maxWorkers": 3}
}`)

	c, err := Parse("config.json", raw)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(c.Accounts), 2)
	assert.Equal(t, c.Accounts[0].MaxProxies, 2)
	assert.Equal(t, c.Accounts[0].Region, "ap-northeast-1")
	assert.Equal(t, c.Accounts[1].MaxProxies, 1)
	assert.Equal(t, c.Stork.BaseURL, "https://example.test/v1")
	assert.Equal(t, c.Interval(), 5*time.Second)
	assert.Equal(t, c.Threads.MaxWorkers, 3)
	assert.Equal(t, c.Stork.RotationInterval, time.Hour)
	assert.Equal(t, c.Session.Backend, "file")
	assert.Equal(t, c.Proxies.File, "proxies.txt")
}

func TestParseYAML(t *testing.T) {
	raw := []byte(`
accounts:
  - username: bob
    password: secret
stork:
  baseURL: https://example.test/v1
  requestTimeout: 15s
session:
  backend: memory
log:
  level: debug
  format: json
`)
	c, err := Parse("config.yaml", raw)
	assert.Equal(t, err, nil)
	assert.Equal(t, c.Accounts[0].ClientID, "5msns4n49hmg3dftp2tp1t2iuh")
	assert.Equal(t, c.Stork.RequestTimeout, 15*time.Second)
	assert.Equal(t, c.Session.Backend, "memory")
	assert.Equal(t, c.Stork.IntervalSeconds, 10)
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"backend":  `{"session": {"backend": "etcd"}}`,
		"base url": `{"stork": {"baseURL": "not a url"}}`,
		"workers":  `{"threads": {"maxWorkers": -1}}`,
		"pool id":  `{"accounts": [{"userPoolId": "nounderscore"}]}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse("config.json", []byte(raw))
			assert.NotEqual(t, err, nil)
		})
	}
}

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	c, err := Load(path)
	assert.Equal(t, errors.Is(err, ErrCreatedDefault), true)
	assert.Equal(t, len(c.Accounts), 1)
	assert.Equal(t, c.Accounts[0].Username, "")

	_, statErr := os.Stat(path)
	assert.Equal(t, statErr, nil)

	// second load reads the file that was just written
	_, err = Load(path)
	assert.Equal(t, err, nil)
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte("threads:\n  maxWorkers: 4\n"), 0o600)
	assert.Equal(t, err, nil)

	t.Setenv("STORK_MAX_WORKERS", "7")
	t.Setenv("STORK_INTERVAL_SECONDS", "30")
	t.Setenv("STORK_PROXY_FILE", "/tmp/p.txt")

	c, err := LoadWithEnv(path)
	assert.Equal(t, err, nil)
	assert.Equal(t, c.Threads.MaxWorkers, 7)
	assert.Equal(t, c.Stork.IntervalSeconds, 30)
	assert.Equal(t, c.Proxies.File, "/tmp/p.txt")
}
