package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Keys lists the settable configuration keys.
func Keys() []string {
	return []string{
		"data.dir",
		"log.level",
		"log.format",
		"server.addr",
		"server.allowed_origins",
		"events.nats_url",
		"events.subject_prefix",
		"telemetry.enabled",
		"telemetry.api_key",
		"telemetry.endpoint",
	}
}

// Set validates and persists key=value. It writes to the config file in use,
// or creates <dir>/.taskgraph.yaml when there is none, and returns the path.
func Set(v *viper.Viper, dir, key, value string) (string, error) {
	if !slices.Contains(Keys(), key) {
		return "", fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	parsed, err := parseValue(key, value)
	if err != nil {
		return "", err
	}

	previous := v.Get(key)
	v.Set(key, parsed)
	if _, err := Decode(v); err != nil {
		v.Set(key, previous)
		return "", err
	}

	path := v.ConfigFileUsed()
	if path == "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create config directory: %w", err)
		}
		path = filepath.Join(dir, ConfigName+".yaml")
	}
	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	v.SetConfigFile(path)
	return path, nil
}

func parseValue(key, value string) (any, error) {
	switch key {
	case "telemetry.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s: expected true or false, got %q", key, value)
		}
		return b, nil
	case "server.allowed_origins":
		var origins []string
		for _, o := range strings.Split(value, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		return origins, nil
	}
	return value, nil
}

// Redacted returns the settings with secrets masked, for display.
func Redacted(v *viper.Viper) map[string]any {
	out := make(map[string]any, len(Keys()))
	for _, k := range Keys() {
		val := v.Get(k)
		if k == "telemetry.api_key" {
			if s, _ := val.(string); s != "" {
				val = "****"
			}
		}
		out[k] = val
	}
	return out
}
