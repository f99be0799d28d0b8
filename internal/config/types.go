// Package config loads the contentd configuration file.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Duration accepts Go duration strings ("16ms", "5m") and plain seconds.
type Duration time.Duration

// DurationValue returns the value as a time.Duration.
func (d Duration) DurationValue() time.Duration { return time.Duration(d) }

// ByteSize accepts plain byte counts and sizes with a unit suffix, decimal
// (KB, MB, GB) or binary (KiB, MiB, GiB).
type ByteSize int64

// Int64 returns the size in bytes.
func (b ByteSize) Int64() int64 { return int64(b) }

var byteUnits = map[string]int64{
	"":    1,
	"B":   1,
	"KB":  1000,
	"MB":  1000 * 1000,
	"GB":  1000 * 1000 * 1000,
	"KIB": 1 << 10,
	"MIB": 1 << 20,
	"GIB": 1 << 30,
}

// ParseByteSize parses strings such as "512", "64KiB" or "1.5 GB".
func ParseByteSize(raw string) (ByteSize, error) {
	s := strings.TrimSpace(raw)
	i := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	num, unit := s, ""
	if i >= 0 {
		num, unit = s[:i], strings.ToUpper(strings.TrimSpace(s[i:]))
	}

	mult, ok := byteUnits[unit]
	if !ok {
		return 0, fmt.Errorf("unknown size unit %q", unit)
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid size %q", raw)
	}
	return ByteSize(f * float64(mult)), nil
}

// ServiceConfig configures the content service and the daemon around it.
type ServiceConfig struct {
	ListenAddr         string   `mapstructure:"ListenAddr"`
	Workers            int      `mapstructure:"Workers"`
	TickInterval       Duration `mapstructure:"TickInterval"`
	AutoPrune          bool     `mapstructure:"AutoPrune"`
	IOLimit            ByteSize `mapstructure:"IOLimit"`
	MaxConcurrentReads int64    `mapstructure:"MaxConcurrentReads"`
	Codec              string   `mapstructure:"Codec"`
	BlobMemoryLimit    ByteSize `mapstructure:"BlobMemoryLimit"`
	BundleMemoryLimit  ByteSize `mapstructure:"BundleMemoryLimit"`

	LogLevel      string `mapstructure:"LogLevel"`
	LogFilePath   string `mapstructure:"LogFilePath"`
	LogMaxSize    int    `mapstructure:"LogMaxSize"`
	LogMaxBackups int    `mapstructure:"LogMaxBackups"`
	LogMaxAge     int    `mapstructure:"LogMaxAge"`
	LogCompress   bool   `mapstructure:"LogCompress"`
}

// Mount types.
const (
	MountLocal  = "local"
	MountMemory = "memory"
	MountZip    = "zip"
	MountMinio  = "minio"
	MountS3     = "s3"
)

// MountConfig describes one storage backend.
type MountConfig struct {
	Scheme string `mapstructure:"Scheme"`
	Type   string `mapstructure:"Type"`

	// Root is the directory of a local mount or the file of a zip mount.
	Root string `mapstructure:"Root"`

	Bucket    string `mapstructure:"Bucket"`
	Prefix    string `mapstructure:"Prefix"`
	Endpoint  string `mapstructure:"Endpoint"`
	Region    string `mapstructure:"Region"`
	AccessKey string `mapstructure:"AccessKey"`
	SecretKey string `mapstructure:"SecretKey"`
	UseSSL    bool   `mapstructure:"UseSSL"`

	// Compression is "none", "lz4" or "zstd". Blobs are stored compressed
	// and decompressed on read.
	Compression string `mapstructure:"Compression"`

	// CacheSize puts a byte cache of this size in front of the backend.
	CacheSize ByteSize `mapstructure:"CacheSize"`

	// MirrorFrom names an earlier mount whose blobs under MirrorPrefix are
	// copied into this one at startup.
	MirrorFrom        string `mapstructure:"MirrorFrom"`
	MirrorPrefix      string `mapstructure:"MirrorPrefix"`
	MirrorConcurrency int    `mapstructure:"MirrorConcurrency"`
}

// Config is the whole configuration file.
type Config struct {
	Service ServiceConfig `mapstructure:"Service"`
	Mounts  []MountConfig `mapstructure:"Mount"`
}
