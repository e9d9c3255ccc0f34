package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/world"
)

func sampleBodies() []world.Body {
	tr := world.NewTrail(15, 1)
	return []world.Body{
		{
			Position:   dynamo.Vec{1.5, -2, 0},
			Velocity:   dynamo.Vec{0, 3.25, 0},
			Mass:       world.HasGravity(1e5),
			Appearance: world.Appearance{Radius: 30, Color: world.White},
			Trail:      &tr,
		},
		{
			Position:   dynamo.Vec{100, 0, 0},
			Velocity:   dynamo.Vec{0, -1, 0},
			Mass:       world.AffectedByGravity(),
			Appearance: world.Appearance{Radius: 0.5, Color: 0x336699},
		},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(Metadata{
		Scene:   "Figure8",
		Seed:    42,
		Dt:      0.01,
		Ticks:   100,
		Metrics: map[string]float64{"energy_drift": 1.5e-4},
	}, sampleBodies())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "Figure8_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Scene != "Figure8" || meta.Seed != 42 || meta.Bodies != 2 {
		t.Errorf("metadata not preserved: %+v", meta)
	}
	if meta.Metrics["energy_drift"] != 1.5e-4 {
		t.Errorf("expected drift 1.5e-4, got %g", meta.Metrics["energy_drift"])
	}

	specs, err := st.LoadBodies(runID)
	if err != nil {
		t.Fatalf("load bodies failed: %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("expected 2 bodies, got %d", len(specs))
	}

	first := specs[0]
	if first.Position != (dynamo.Vec{1.5, -2, 0}) || first.Velocity != (dynamo.Vec{0, 3.25, 0}) {
		t.Errorf("kinematics not preserved: %+v", first)
	}
	if first.Mass != world.HasGravity(1e5) {
		t.Errorf("expected gravitating 1e5, got %+v", first.Mass)
	}
	if first.Trail == nil || *first.Trail != world.NewTrail(15, 1) {
		t.Errorf("trail not preserved: %+v", first.Trail)
	}

	second := specs[1]
	if second.Mass.Kind != world.Test {
		t.Errorf("expected test body, got %v", second.Mass.Kind)
	}
	if second.Color != 0x336699 {
		t.Errorf("expected color #336699, got %s", second.Color.Hex())
	}
	if second.Trail != nil {
		t.Error("expected no trail on second body")
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	for _, name := range []string{"Orbits", "Empty"} {
		if _, err := st.Save(Metadata{Scene: name}, nil); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Timestamp.Before(runs[1].Timestamp) {
		t.Error("expected newest run first")
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(Metadata{Scene: "Orbits"}, sampleBodies())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "bodies.csv"} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestReadCSVRejectsBadKind(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleBodies()[:1]); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	bad := strings.Replace(buf.String(), "gravitating", "dark", 1)
	if _, err := ReadCSV(strings.NewReader(bad)); err == nil {
		t.Error("expected error for unknown mass kind")
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleBodies()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	specs, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var out bytes.Buffer
	if err := ExportJSON(&out, Metadata{ID: "x", Scene: "Figure8"}, specs); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(out.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(data.Bodies) != 2 || data.Bodies[0].TrailLength != 15 || data.Bodies[1].Kind != "test" {
		t.Errorf("unexpected export: %+v", data.Bodies)
	}
}
