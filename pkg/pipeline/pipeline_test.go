package pipeline_test

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/funvibe/ctorex/pkg/ctorex"
	"github.com/funvibe/ctorex/pkg/pipeline"
)

type probe struct {
	scale int64
}

func newProbeRegistry(t *testing.T) *ctorex.Registry {
	t.Helper()
	reg := ctorex.NewRegistry()
	err := reg.RegisterType(&ctorex.TypeDescriptor{
		Name:         "Probe",
		Capabilities: []string{"Signal"},
		Constructors: []*ctorex.Constructor{{
			Params: []ctorex.Param{ctorex.IntParam()},
			Fn: func(args []ctorex.Value) (any, error) {
				return &probe{scale: args[0].(*ctorex.Integer).Value}, nil
			},
		}},
	})
	if err != nil {
		t.Fatalf("RegisterType failed: %v", err)
	}
	return reg
}

const pipelinesYAML = `
pipelines:
  - name: fast
    expression: Probe(10)
  - name: slow
    expression: Probe(900)
    capability: Signal
`

func TestParse(t *testing.T) {
	cfg, err := pipeline.Parse([]byte(pipelinesYAML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(cfg.Pipelines) != 2 {
		t.Fatalf("got %d pipelines, want 2", len(cfg.Pipelines))
	}
	if cfg.Pipelines[0].Name != "fast" || cfg.Pipelines[0].Expression != "Probe(10)" {
		t.Errorf("first definition = %+v", cfg.Pipelines[0])
	}
	if cfg.Pipelines[1].Capability != "Signal" {
		t.Errorf("capability = %q, want Signal", cfg.Pipelines[1].Capability)
	}
}

func TestParseValidation(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
		want string
	}{
		{
			"missing_name",
			"pipelines:\n  - expression: Probe(1)\n",
			"name is required",
		},
		{
			"missing_expression",
			"pipelines:\n  - name: fast\n",
			"expression is required",
		},
		{
			"duplicate_name",
			"pipelines:\n  - name: fast\n    expression: Probe(1)\n  - name: fast\n    expression: Probe(2)\n",
			"duplicate pipeline name",
		},
		{
			"not_yaml",
			"{{{",
			"invalid pipelines config",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := pipeline.Parse([]byte(tc.yaml))
			if err == nil {
				t.Fatalf("Parse succeeded, want error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("err = %v, want substring %q", err, tc.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipelines.yaml")
	if err := os.WriteFile(path, []byte(pipelinesYAML), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := pipeline.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Pipelines) != 2 {
		t.Errorf("got %d pipelines, want 2", len(cfg.Pipelines))
	}

	if _, err := pipeline.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("Load of a missing file succeeded")
	}
}

func TestBuild(t *testing.T) {
	reg := newProbeRegistry(t)

	cfg, err := pipeline.Parse([]byte(pipelinesYAML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	built, err := cfg.Build(reg)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(built) != 2 {
		t.Fatalf("built %d pipelines, want 2", len(built))
	}
	if p := built["slow"].Object.(*probe); p.scale != 900 {
		t.Errorf("slow scale = %d, want 900", p.scale)
	}
}

func TestBuildFailFast(t *testing.T) {
	reg := newProbeRegistry(t)

	cfg, err := pipeline.Parse([]byte(
		"pipelines:\n" +
			"  - name: good\n    expression: Probe(1)\n" +
			"  - name: bad\n    expression: Bogus(1)\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	built, err := cfg.Build(reg)
	if err == nil {
		t.Fatalf("Build succeeded, want failure on pipeline bad")
	}
	if built != nil {
		t.Errorf("Build returned a partial result")
	}
	if !strings.Contains(err.Error(), `pipeline "bad"`) {
		t.Errorf("err = %v, want the failing pipeline named", err)
	}
}

func TestBuildCapabilityEnforced(t *testing.T) {
	reg := newProbeRegistry(t)

	cfg, err := pipeline.Parse([]byte(
		"pipelines:\n  - name: fast\n    expression: Probe(1)\n    capability: Storage\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := cfg.Build(reg); err == nil {
		t.Errorf("Build succeeded despite missing capability")
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("opening catalog: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE pipelines (
		name       TEXT PRIMARY KEY,
		expression TEXT NOT NULL,
		capability TEXT NOT NULL DEFAULT ''
	)`)
	if err != nil {
		t.Fatalf("creating schema: %v", err)
	}
	for _, row := range [][3]string{
		{"slow", "Probe(900)", "Signal"},
		{"fast", "Probe(10)", ""},
	} {
		if _, err := db.Exec(`INSERT INTO pipelines (name, expression, capability) VALUES (?, ?, ?)`,
			row[0], row[1], row[2]); err != nil {
			t.Fatalf("inserting row: %v", err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("closing catalog: %v", err)
	}

	cfg, err := pipeline.LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	if len(cfg.Pipelines) != 2 {
		t.Fatalf("got %d pipelines, want 2", len(cfg.Pipelines))
	}
	// rows come back in name order
	if cfg.Pipelines[0].Name != "fast" || cfg.Pipelines[1].Name != "slow" {
		t.Errorf("order = %q,%q, want fast,slow", cfg.Pipelines[0].Name, cfg.Pipelines[1].Name)
	}

	built, err := cfg.Build(newProbeRegistry(t))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if p := built["fast"].Object.(*probe); p.scale != 10 {
		t.Errorf("fast scale = %d, want 10", p.scale)
	}
}
