package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestProxiesCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	proxyPath := filepath.Join(dir, "proxies.txt")

	cfg := `
accounts:
  - username: alice
    password: pw
    maxProxies: 2
  - username: bob
    password: pw
log:
  output: stderr
`
	assert.Equal(t, os.WriteFile(cfgPath, []byte(cfg), 0o600), nil)
	assert.Equal(t, os.WriteFile(proxyPath, []byte("http://p0:8080\n# off\nsocks4://p1:1080\nftp://p2:21\n"), 0o600), nil)

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"proxies", "--config", cfgPath, "--proxies", proxyPath})
	assert.Equal(t, cmd.Execute(), nil)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	want := []string{
		"alice",
		"  http   http://p0:8080",
		"  socks  socks4://p1:1080",
		"bob",
		"  unsupported ftp://p2:21",
	}
	assert.Equal(t, lines, want)
}

func TestProxiesCommandWithoutPool(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	assert.Equal(t, os.WriteFile(cfgPath, []byte("accounts:\n  - username: alice\n    password: pw\nlog:\n  output: stderr\n"), 0o600), nil)

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"proxies", "-c", cfgPath, "-p", filepath.Join(dir, "missing.txt")})
	assert.Equal(t, cmd.Execute(), nil)
	assert.Equal(t, out.String(), "alice\n  direct\n")
}
