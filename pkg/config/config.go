package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// FlexibleInt64Slice is an []int64 that also accepts JSON strings,
// so allow lists can contain both 743972515 and "743972515".
type FlexibleInt64Slice []int64

func (f *FlexibleInt64Slice) UnmarshalJSON(data []byte) error {
	// Try []int64 first
	var ids []int64
	if err := json.Unmarshal(data, &ids); err == nil {
		*f = ids
		return nil
	}

	// Try []interface{} to handle mixed types
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	result := make([]int64, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case float64:
			result = append(result, int64(val))
		case string:
			id, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", val, err)
			}
			result = append(result, id)
		default:
			return fmt.Errorf("invalid id %v (type %T)", v, v)
		}
	}
	*f = result
	return nil
}

// UnmarshalText lets env.Parse fill the slice from a comma-separated
// variable such as BEATCLAW_ALLOW_GROUPS=743972515,123456789.
func (f *FlexibleInt64Slice) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		*f = nil
		return nil
	}

	parts := strings.Split(s, ",")
	result := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", p, err)
		}
		result = append(result, id)
	}
	*f = result
	return nil
}

type Config struct {
	Gateway    GatewayConfig    `json:"gateway"`
	Commands   CommandsConfig   `json:"commands"`
	Allow      AllowConfig      `json:"allow"`
	BeatLeader BeatLeaderConfig `json:"beatleader"`
	Bindings   BindingsConfig   `json:"bindings"`
	Digest     DigestConfig     `json:"digest"`
}

// GatewayConfig points the bot at its OneBot endpoint pair: the WebSocket
// event stream it consumes and the HTTP API it replies through.
type GatewayConfig struct {
	WSHost            string `env:"BEATCLAW_GATEWAY_WS_HOST"             json:"ws_host"`
	WSPort            int    `env:"BEATCLAW_GATEWAY_WS_PORT"             json:"ws_port"`
	APIHost           string `env:"BEATCLAW_GATEWAY_API_HOST"            json:"api_host"`
	APIPort           int    `env:"BEATCLAW_GATEWAY_API_PORT"            json:"api_port"`
	AccessToken       string `env:"BEATCLAW_GATEWAY_ACCESS_TOKEN"        json:"access_token"`
	APITimeoutSeconds int    `env:"BEATCLAW_GATEWAY_API_TIMEOUT_SECONDS" json:"api_timeout_seconds"`
}

// WSURL returns the URL of the inbound event stream.
func (g GatewayConfig) WSURL() string {
	return fmt.Sprintf("ws://%s:%d", g.WSHost, g.WSPort)
}

// APIURL returns the base URL of the outbound message API.
func (g GatewayConfig) APIURL() string {
	return fmt.Sprintf("http://%s:%d", g.APIHost, g.APIPort)
}

func (g GatewayConfig) APITimeout() time.Duration {
	return time.Duration(g.APITimeoutSeconds) * time.Second
}

type CommandsConfig struct {
	Prefix string `env:"BEATCLAW_COMMANDS_PREFIX" json:"prefix"`
}

// AllowConfig lists who may talk to the bot. Group messages are gated on
// Groups, private messages on Users; an empty list enables nothing.
type AllowConfig struct {
	Groups FlexibleInt64Slice `env:"BEATCLAW_ALLOW_GROUPS" json:"groups"`
	Users  FlexibleInt64Slice `env:"BEATCLAW_ALLOW_USERS"  json:"users"`
}

type BeatLeaderConfig struct {
	BaseURL        string `env:"BEATCLAW_BEATLEADER_BASE_URL"        json:"base_url"`
	TimeoutSeconds int    `env:"BEATCLAW_BEATLEADER_TIMEOUT_SECONDS" json:"timeout_seconds"`
	SearchCountry  string `env:"BEATCLAW_BEATLEADER_SEARCH_COUNTRY"  json:"search_country"`
	SearchLimit    int    `env:"BEATCLAW_BEATLEADER_SEARCH_LIMIT"    json:"search_limit"`
}

func (b BeatLeaderConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

type BindingsConfig struct {
	Path string `env:"BEATCLAW_BINDINGS_PATH" json:"path"`
}

type DigestConfig struct {
	Enabled  bool               `env:"BEATCLAW_DIGEST_ENABLED"  json:"enabled"`
	Schedule string             `env:"BEATCLAW_DIGEST_SCHEDULE" json:"schedule"`
	Groups   FlexibleInt64Slice `env:"BEATCLAW_DIGEST_GROUPS"   json:"groups"`
}

func DefaultConfig() *Config {
	return &Config{
		Gateway: GatewayConfig{
			WSHost:            "localhost",
			WSPort:            3001,
			APIHost:           "localhost",
			APIPort:           3000,
			APITimeoutSeconds: 10,
		},
		Commands: CommandsConfig{
			Prefix: `\`,
		},
		BeatLeader: BeatLeaderConfig{
			BaseURL:        "https://api.beatleader.com",
			TimeoutSeconds: 10,
			SearchCountry:  "cn",
			SearchLimit:    5,
		},
		Bindings: BindingsConfig{
			Path: "~/.beatclaw/bindings.db",
		},
		Digest: DigestConfig{
			Enabled:  false,
			Schedule: "0 8 * * *",
		},
	}
}

// LoadConfig builds the effective configuration: defaults, overlaid with
// the JSON file at path (a missing file is fine), overlaid with
// BEATCLAW_* environment variables.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// no file; defaults plus env only
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// BindingsPath returns the bindings database location with ~ expanded.
func (c *Config) BindingsPath() string {
	return expandHome(c.Bindings.Path)
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
