package repository

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	applogger "StorkPull/pkg/logger"
)

// LoadProxyPool reads one egress URI per line. Blank lines and lines
// starting with # are skipped. A missing file is created empty and yields
// an empty pool.
func LoadProxyPool(path string, l *applogger.Logger) ([]string, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		l.Warn("proxy file not found, running without proxies", applogger.String("path", path))
		if werr := os.WriteFile(path, nil, 0o644); werr != nil {
			l.Warn("create empty proxy file", applogger.String("path", path), applogger.Error(werr))
		}
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read proxy file: %w", err)
	}

	return ParseProxyList(b), nil
}

// ParseProxyList splits newline-delimited proxy text.
func ParseProxyList(b []byte) []string {
	proxies := []string{}
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		proxies = append(proxies, line)
	}
	return proxies
}
