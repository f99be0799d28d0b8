package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Load reads the TOML file at path, applies defaults and validates the
// result.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "contentd.toml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
		byteSizeDecodeHook(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("Service.ListenAddr", "127.0.0.1:7070")
	v.SetDefault("Service.Workers", 0)
	v.SetDefault("Service.TickInterval", "16ms")
	v.SetDefault("Service.Codec", "go-json")
	v.SetDefault("Service.LogLevel", "info")
	v.SetDefault("Service.LogMaxSize", 100)
	v.SetDefault("Service.LogMaxBackups", 10)
	v.SetDefault("Service.LogCompress", true)
}

func applyDefaults(cfg *Config) {
	if cfg.Service.TickInterval.DurationValue() <= 0 {
		cfg.Service.TickInterval = Duration(16 * time.Millisecond)
	}
	for i := range cfg.Mounts {
		m := &cfg.Mounts[i]
		m.Scheme = strings.TrimSpace(m.Scheme)
		m.Type = strings.ToLower(strings.TrimSpace(m.Type))
		if m.Compression == "" {
			m.Compression = "none"
		}
		m.Compression = strings.ToLower(m.Compression)
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("invalid duration: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("unsupported duration type: %T", v)
		}
	}
}

func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(ByteSize(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return ByteSize(0), nil
			}
			return ParseByteSize(v)
		case int:
			return ByteSize(v), nil
		case int64:
			return ByteSize(v), nil
		case float64:
			return ByteSize(v), nil
		case ByteSize:
			return v, nil
		default:
			return nil, fmt.Errorf("unsupported size type: %T", v)
		}
	}
}
