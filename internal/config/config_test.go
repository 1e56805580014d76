package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parkentry.yaml")
	body := `
server:
  addr: ":8080"
catalog:
  timeout: 3s
uploads:
  driver: s3
  s3:
    bucket: receipts
    usePathStyle: true
submission:
  printCommand: ["lp", "-d", "front-desk"]
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Catalog.Timeout != 3*time.Second {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.Uploads.Driver != DriverS3 || !cfg.Uploads.S3.UsePathStyle || cfg.Uploads.S3.Bucket != "receipts" {
		t.Fatalf("unexpected uploads config: %+v", cfg.Uploads)
	}
	if diff := cmp.Diff([]string{"lp", "-d", "front-desk"}, cfg.Submission.PrintCommand); diff != "" {
		t.Fatalf("print command mismatch (-want +got):\n%s", diff)
	}
	if cfg.Store.Path != Default().Store.Path {
		t.Fatalf("unset keys must keep defaults, got %q", cfg.Store.Path)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PARKENTRY_ADDR":          ":9000",
		"PARKENTRY_LOG_FORMAT":    "json",
		"PARKENTRY_PRINT":         "false",
		"PARKENTRY_PRINT_COMMAND": "lpr -P desk",
		"PARKENTRY_TEMPLATES_DIR": "/srv/parkentry/templates",
	}
	cfg := Default()
	err := cfg.ApplyEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	if err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Server.Addr != ":9000" || cfg.Log.Format != "json" || cfg.Submission.Print || cfg.Server.TemplatesDir != "/srv/parkentry/templates" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if diff := cmp.Diff([]string{"lpr", "-P", "desk"}, cfg.Submission.PrintCommand); diff != "" {
		t.Fatalf("print command mismatch (-want +got):\n%s", diff)
	}

	bad := Default()
	if err := bad.ApplyEnv(func(key string) (string, bool) {
		return "often", key == "PARKENTRY_PRINT"
	}); err == nil {
		t.Fatalf("expected error for invalid boolean")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Uploads.Driver = DriverS3
	cfg.Store.Path = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"uploads.s3.bucket", "store.path"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}
