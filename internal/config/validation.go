package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/hupe1980/content/blobstore"
	"github.com/hupe1980/content/codec"
)

// Validate checks the configuration for values the daemon cannot run with.
func (c *Config) Validate() error {
	s := c.Service
	if strings.TrimSpace(s.ListenAddr) == "" {
		return newFieldError("Service.ListenAddr", "must not be empty")
	}
	if s.Workers < 0 {
		return newFieldError("Service.Workers", "must not be negative")
	}
	if s.MaxConcurrentReads < 0 {
		return newFieldError("Service.MaxConcurrentReads", "must not be negative")
	}
	if _, ok := codec.ByName(s.Codec); !ok {
		return newFieldError("Service.Codec", "unknown codec "+s.Codec)
	}
	if _, err := ParseLogLevel(s.LogLevel); err != nil {
		return newFieldError("Service.LogLevel", err.Error())
	}
	if len(c.Mounts) == 0 {
		return newFieldError("Mount", "at least one mount is required")
	}

	seen := make(map[string]bool, len(c.Mounts))
	for i, m := range c.Mounts {
		if m.Scheme == "" {
			return newFieldError(mountField("", i, "Scheme"), "must not be empty")
		}
		if seen[m.Scheme] {
			return newFieldError(mountField(m.Scheme, i, "Scheme"), "duplicate scheme")
		}
		seen[m.Scheme] = true

		switch m.Type {
		case MountLocal, MountZip:
			if m.Root == "" {
				return newFieldError(mountField(m.Scheme, i, "Root"), "required for type "+m.Type)
			}
		case MountMemory:
		case MountMinio:
			if m.Endpoint == "" {
				return newFieldError(mountField(m.Scheme, i, "Endpoint"), "required for type minio")
			}
			fallthrough
		case MountS3:
			if m.Bucket == "" {
				return newFieldError(mountField(m.Scheme, i, "Bucket"), "required for type "+m.Type)
			}
		default:
			return newFieldError(mountField(m.Scheme, i, "Type"), "unknown mount type "+m.Type)
		}

		if _, err := ParseCompression(m.Compression); err != nil {
			return newFieldError(mountField(m.Scheme, i, "Compression"), err.Error())
		}
		if m.MirrorFrom != "" && (m.MirrorFrom == m.Scheme || !seen[m.MirrorFrom]) {
			return newFieldError(mountField(m.Scheme, i, "MirrorFrom"), "must name an earlier mount")
		}
		if m.MirrorConcurrency < 0 {
			return newFieldError(mountField(m.Scheme, i, "MirrorConcurrency"), "must not be negative")
		}
	}
	return nil
}

// ParseCompression maps a configuration value to a blobstore compression.
func ParseCompression(s string) (blobstore.Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return blobstore.CompressionNone, nil
	case "lz4":
		return blobstore.CompressionLZ4, nil
	case "zstd":
		return blobstore.CompressionZSTD, nil
	default:
		return blobstore.CompressionNone, fmt.Errorf("unknown compression %q", s)
	}
}

// ParseLogLevel maps "debug", "info", "warn" or "error" to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(strings.TrimSpace(s)))
	return level, err
}
