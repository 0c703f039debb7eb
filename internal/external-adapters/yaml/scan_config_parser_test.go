package yaml

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/ochairo/pyprobe/internal/domain/entities"
)

func TestScanConfigParser_Parse(t *testing.T) {
	parser := NewScanConfigParser()

	tests := []struct {
		name    string
		yaml    string
		want    func(c *entities.ScanConfig)
		wantErr bool
	}{
		{
			name: "full document",
			yaml: `package: Hello-World-Package
index_url: https://test.pypi.org/simple/
major_begin: 3
major_max_step: 1
minor_max_step: 4
concurrency: 8
pip: [python3.12, -m, pip]
probe_timeout: 90s
`,
			want: func(c *entities.ScanConfig) {
				c.Package = "Hello-World-Package"
				c.IndexURL = "https://test.pypi.org/simple/"
				c.MajorBegin = 3
				c.MajorMaxStep = 1
				c.MinorMaxStep = 4
				c.Concurrency = 8
				c.PipCommand = []string{"python3.12", "-m", "pip"}
				c.ProbeTimeout = 90 * time.Second
			},
		},
		{
			name: "partial document keeps base values",
			yaml: "package: requests\nminor_max_step: 3\n",
			want: func(c *entities.ScanConfig) {
				c.Package = "requests"
				c.MinorMaxStep = 3
			},
		},
		{
			name: "pip as string",
			yaml: "pip: uv pip\n",
			want: func(c *entities.ScanConfig) {
				c.PipCommand = []string{"uv", "pip"}
			},
		},
		{
			name: "explicit zero overrides base",
			yaml: "major_begin: 0\n",
			want: func(c *entities.ScanConfig) {
				c.MajorBegin = 0
			},
		},
		{
			name: "empty document",
			yaml: "",
			want: func(_ *entities.ScanConfig) {},
		},
		{
			name:    "unknown key",
			yaml:    "package: requests\nmajor_start: 3\n",
			wantErr: true,
		},
		{
			name:    "bad duration",
			yaml:    "probe_timeout: forever\n",
			wantErr: true,
		},
		{
			name:    "wrong type",
			yaml:    "concurrency: many\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := entities.DefaultScanConfig()
			got, err := parser.Parse([]byte(tt.yaml), base)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !reflect.DeepEqual(got, base) {
					t.Errorf("Parse() on error = %+v, want base %+v", got, base)
				}
				return
			}

			want := entities.DefaultScanConfig()
			tt.want(&want)
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Parse() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestScanConfigParser_BadDurationIsInvalidConfig(t *testing.T) {
	_, err := NewScanConfigParser().Parse([]byte("probe_timeout: 5 minutes\n"), entities.DefaultScanConfig())
	if !errors.Is(err, entities.ErrInvalidConfig) {
		t.Errorf("Parse() error = %v, want ErrInvalidConfig", err)
	}
}

func TestScanConfigParser_ParseFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "scan.yaml")
	content := "package: numpy\nconcurrency: 4\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	cfg, err := NewScanConfigParser().ParseFile(path, entities.DefaultScanConfig())
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if cfg.Package != "numpy" || cfg.Concurrency != 4 {
		t.Errorf("ParseFile() = %+v, want numpy with concurrency 4", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestScanConfigParser_ParseFileMissing(t *testing.T) {
	_, err := NewScanConfigParser().ParseFile(filepath.Join(t.TempDir(), "nope.yaml"), entities.DefaultScanConfig())
	if err == nil {
		t.Fatal("ParseFile() expected error for missing file")
	}
	if !strings.Contains(err.Error(), "failed to read file") {
		t.Errorf("ParseFile() error = %v", err)
	}
}
