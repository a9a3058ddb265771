// Package config resolves runtime settings from defaults, an optional YAML
// file and AMITY_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	blobcore "amity/internal/blob/core"
	"amity/internal/core"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "AMITY_"

// Config is the full runtime configuration.
type Config struct {
	Log        Log        `yaml:"log"`
	Storage    Storage    `yaml:"storage"`
	Blob       Blob       `yaml:"blob"`
	Capacity   Capacity   `yaml:"capacity"`
	Allocation Allocation `yaml:"allocation"`
}

// Log selects the logger level and encoding.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Storage configures the named state stores.
type Storage struct {
	Driver      string `yaml:"driver"`
	DefaultName string `yaml:"default_name"`
	SQLiteDir   string `yaml:"sqlite_dir"`
	PostgresDSN string `yaml:"postgres_dsn"`
	Redis       Redis  `yaml:"redis"`
}

// Redis holds redis connection settings.
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Blob configures where report files are written.
type Blob struct {
	Driver string `yaml:"driver"`
	FSRoot string `yaml:"fs_root"`
	S3     S3     `yaml:"s3"`
}

// S3 holds bucket settings. Credentials come from the default AWS chain.
type S3 struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// Capacity overrides the room capacity per type.
type Capacity struct {
	Office      int `yaml:"office"`
	LivingSpace int `yaml:"living_space"`
}

// Allocation tunes room selection. A zero seed means time seeded.
type Allocation struct {
	Seed uint64 `yaml:"seed"`
}

// Default returns the built-in configuration.
func Default() Config {
	caps := core.DefaultCapacities()
	return Config{
		Log: Log{Level: "info", Format: "console"},
		Storage: Storage{
			Driver:      string(core.StorageSQLite),
			DefaultName: core.DefaultStateName,
			SQLiteDir:   ".",
			Redis:       Redis{Addr: "localhost:6379"},
		},
		Blob:     Blob{Driver: string(blobcore.DriverFilesystem), FSRoot: "."},
		Capacity: Capacity{Office: caps.Office, LivingSpace: caps.LivingSpace},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// empty; AMITY_CONFIG is used when path is empty) and the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	var errs []error
	num := func(key string, dst *int) {
		if v, ok := lookup(EnvPrefix + key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("STORAGE_DRIVER", &c.Storage.Driver)
	str("STORAGE_DEFAULT_NAME", &c.Storage.DefaultName)
	str("SQLITE_DIR", &c.Storage.SQLiteDir)
	str("POSTGRES_DSN", &c.Storage.PostgresDSN)
	str("REDIS_ADDR", &c.Storage.Redis.Addr)
	str("REDIS_PASSWORD", &c.Storage.Redis.Password)
	num("REDIS_DB", &c.Storage.Redis.DB)
	str("BLOB_DRIVER", &c.Blob.Driver)
	str("BLOB_FS_ROOT", &c.Blob.FSRoot)
	str("BLOB_S3_BUCKET", &c.Blob.S3.Bucket)
	str("BLOB_S3_REGION", &c.Blob.S3.Region)
	str("BLOB_S3_ENDPOINT", &c.Blob.S3.Endpoint)
	if v, ok := lookup(EnvPrefix + "BLOB_S3_PATH_STYLE"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%sBLOB_S3_PATH_STYLE: %w", EnvPrefix, err))
		} else {
			c.Blob.S3.PathStyle = b
		}
	}
	num("OFFICE_CAPACITY", &c.Capacity.Office)
	num("LIVING_SPACE_CAPACITY", &c.Capacity.LivingSpace)
	if v, ok := lookup(EnvPrefix + "SEED"); ok {
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSEED: %w", EnvPrefix, err))
		} else {
			c.Allocation.Seed = n
		}
	}
	return errors.Join(errs...)
}

// Validate rejects unknown drivers and non-positive capacities.
func (c Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	if !validStorageDriver(c.Storage.Driver) {
		errs = append(errs, fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver))
	}
	switch blobcore.Driver(c.Blob.Driver) {
	case blobcore.DriverFilesystem, blobcore.DriverMemory:
	case blobcore.DriverS3:
		if c.Blob.S3.Bucket == "" {
			errs = append(errs, errors.New("blob.s3.bucket: required for the s3 driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("blob.driver: unknown driver %q", c.Blob.Driver))
	}
	if c.Capacity.Office <= 0 {
		errs = append(errs, fmt.Errorf("capacity.office: must be positive, got %d", c.Capacity.Office))
	}
	if c.Capacity.LivingSpace <= 0 {
		errs = append(errs, fmt.Errorf("capacity.living_space: must be positive, got %d", c.Capacity.LivingSpace))
	}
	return errors.Join(errs...)
}

func validStorageDriver(driver string) bool {
	for _, d := range core.StorageDrivers {
		if string(d) == driver {
			return true
		}
	}
	return false
}

// Capacities converts the capacity section.
func (c Config) Capacities() core.Capacities {
	return core.Capacities{Office: c.Capacity.Office, LivingSpace: c.Capacity.LivingSpace}
}

// StorageOptions converts the storage section.
func (c Config) StorageOptions() core.StorageOptions {
	return core.StorageOptions{
		Driver:        core.StorageDriver(c.Storage.Driver),
		SQLiteDir:     c.Storage.SQLiteDir,
		PostgresDSN:   c.Storage.PostgresDSN,
		RedisAddr:     c.Storage.Redis.Addr,
		RedisPassword: c.Storage.Redis.Password,
		RedisDB:       c.Storage.Redis.DB,
	}
}
