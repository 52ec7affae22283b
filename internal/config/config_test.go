package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mwr.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := writeConfig(t, `
[input]
file = "/data/W_XX-EUMETSAT-Darmstadt,SAT,AWS1-MWR-1B-RAD_C_EUMT_20240901120000_G_D_20240901120000_20240901121500_T_B____.nc"

[export]
vm_insert_url = "http://vm:8428/api/v1/import/csv"
concurrency = 4

[logging]
level = "debug"
`)
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := Default()
	want.Input.File = "/data/W_XX-EUMETSAT-Darmstadt,SAT,AWS1-MWR-1B-RAD_C_EUMT_20240901120000_G_D_20240901120000_20240901121500_T_B____.nc"
	want.Export.VMInsertURL = "http://vm:8428/api/v1/import/csv"
	want.Export.Concurrency = 4
	want.Logging.Level = "debug"
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v\nwant %+v", got, want)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Input.FileType = "eps_sterna_mwr_l1b"
	cfg.Decode.AngleScaleFactor = 1
	b, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Load(writeConfig(t, string(b)))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Errorf("got %+v, want %+v", got, cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "[export]\nvm_url = \"x\"\n", "vm_url"},
		{"syntax", "[export\n", "mwr.toml"},
		{"negative concurrency", "[export]\nconcurrency = -1\n", "export.concurrency"},
		{"empty batch", "[export]\nrecs_per_insert = 0\n", "export.recs_per_insert"},
		{"empty prefix", "[export]\nmetric_prefix = \"\"\n", "export.metric_prefix"},
		{"zero geo scale", "[decode]\ngeo_scale_factor = 0.0\n", "decode.geo_scale_factor"},
		{"negative angle scale", "[decode]\nangle_scale_factor = -0.01\n", "decode.angle_scale_factor"},
		{"empty file type", "[input]\nfile_type = \"\"\n", "input.file_type"},
		{"bad level", "[logging]\nlevel = \"loud\"\n", "logging.level"},
	}
	for _, tc := range tests {
		_, err := Load(writeConfig(t, tc.content))
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: got %v, want an error mentioning %q", tc.name, err, tc.want)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("got %v, want os.ErrNotExist", err)
	}
}

func TestSlogLevel(t *testing.T) {
	for name, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := LoggingConfig{Level: name}.SlogLevel()
		if err != nil || got != want {
			t.Errorf("%s: got %v, %v, want %v", name, got, err, want)
		}
	}
}
