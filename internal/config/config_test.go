package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"amity/internal/core"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Storage.DefaultName != "default_db" || cfg.Storage.Driver != "sqlite" || cfg.Blob.Driver != "fs" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if got := cfg.Capacities(); got != core.DefaultCapacities() {
		t.Fatalf("unexpected capacities %+v", got)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "amity.yaml")
	yamlDoc := `
log:
  level: debug
  format: json
storage:
  driver: redis
  redis:
    addr: cache:6379
    db: 2
capacity:
  office: 8
allocation:
  seed: 42
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("AMITY_REDIS_ADDR", "override:6380")
	t.Setenv("AMITY_LIVING_SPACE_CAPACITY", "2")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("unexpected log section %+v", cfg.Log)
	}
	if cfg.Storage.Driver != "redis" || cfg.Storage.Redis.Addr != "override:6380" || cfg.Storage.Redis.DB != 2 {
		t.Fatalf("unexpected storage section %+v", cfg.Storage)
	}
	if cfg.Capacity.Office != 8 || cfg.Capacity.LivingSpace != 2 || cfg.Allocation.Seed != 42 {
		t.Fatalf("unexpected capacity/allocation %+v %+v", cfg.Capacity, cfg.Allocation)
	}
	if cfg.Storage.DefaultName != "default_db" {
		t.Fatalf("defaults should survive partial files, got %q", cfg.Storage.DefaultName)
	}
	opts := cfg.StorageOptions()
	if opts.Driver != core.StorageRedis || opts.RedisAddr != "override:6380" || opts.RedisDB != 2 {
		t.Fatalf("unexpected storage options %+v", opts)
	}
}

func TestLoadUsesConfigEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "amity.yaml")
	if err := os.WriteFile(path, []byte("blob:\n  driver: memory\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("AMITY_CONFIG", path)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Blob.Driver != "memory" {
		t.Fatalf("expected blob driver from AMITY_CONFIG file, got %q", cfg.Blob.Driver)
	}
}

func TestApplyEnvParsesTypes(t *testing.T) {
	env := map[string]string{
		"AMITY_SEED":               "99",
		"AMITY_BLOB_S3_PATH_STYLE": "true",
		"AMITY_BLOB_S3_BUCKET":     " reports ",
		"AMITY_OFFICE_CAPACITY":    "3",
	}
	cfg := Default()
	if err := cfg.applyEnv(func(k string) (string, bool) { v, ok := env[k]; return v, ok }); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Allocation.Seed != 99 || !cfg.Blob.S3.PathStyle || cfg.Blob.S3.Bucket != "reports" || cfg.Capacity.Office != 3 {
		t.Fatalf("unexpected config %+v", cfg)
	}

	bad := map[string]string{"AMITY_SEED": "-1", "AMITY_REDIS_DB": "x", "AMITY_BLOB_S3_PATH_STYLE": "maybe"}
	cfg = Default()
	err := cfg.applyEnv(func(k string) (string, bool) { v, ok := bad[k]; return v, ok })
	if err == nil {
		t.Fatalf("expected parse errors")
	}
	for _, key := range []string{"AMITY_SEED", "AMITY_REDIS_DB", "AMITY_BLOB_S3_PATH_STYLE"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected %s in %v", key, err)
		}
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"storage", func(c *Config) { c.Storage.Driver = "etcd" }, "storage.driver"},
		{"blob", func(c *Config) { c.Blob.Driver = "ftp" }, "blob.driver"},
		{"s3 bucket", func(c *Config) { c.Blob.Driver = "s3" }, "blob.s3.bucket"},
		{"office", func(c *Config) { c.Capacity.Office = 0 }, "capacity.office"},
		{"living", func(c *Config) { c.Capacity.LivingSpace = -1 }, "capacity.living_space"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %s error, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected missing file error")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("log: [unclosed"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
	t.Setenv("AMITY_STORAGE_DRIVER", "etcd")
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "storage.driver") {
		t.Fatalf("expected validation error, got %v", err)
	}
}
