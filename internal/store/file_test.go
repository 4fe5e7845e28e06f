package store

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/models"
)

func testDefinitions() map[string]models.DeviceDefinition {
	max := 25.0
	return map[string]models.DeviceDefinition{
		"rack-01": {
			DeviceType: models.TypeGenerator,
			Metrics: []models.Metric{
				{Name: "temp", Unit: "C", Min: 20, Max: 30},
			},
			Config: models.DeviceConfig{
				Alerts: map[string]models.Threshold{"temp": {Max: &max}},
			},
		},
		"greenhouse": {
			DeviceType: models.TypeGenerator,
			Metrics: []models.Metric{
				{Name: "humidity", Unit: "%", Min: 30, Max: 70},
				{Name: "temp", Unit: "C", Min: 15, Max: 35},
			},
			Config: models.DeviceConfig{},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")
	s := NewFileStore(path)
	ctx := context.Background()

	want := testDefinitions()
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("Load() returned %d definitions, want %d", len(got), len(want))
	}
	for id, def := range want {
		loaded, ok := got[id]
		if !ok {
			t.Fatalf("Load() missing device %q", id)
		}
		if loaded.DeviceType != def.DeviceType {
			t.Errorf("%s type = %v, want %v", id, loaded.DeviceType, def.DeviceType)
		}
		if !reflect.DeepEqual(loaded.Metrics, def.Metrics) {
			t.Errorf("%s metrics = %v, want %v", id, loaded.Metrics, def.Metrics)
		}
	}

	th := got["rack-01"].Config.Alerts["temp"]
	if th.Max == nil || *th.Max != 25 {
		t.Errorf("rack-01 temp max threshold = %v, want 25", th.Max)
	}
	if th.Min != nil {
		t.Errorf("rack-01 temp min threshold = %v, want nil", *th.Min)
	}
}

func TestSaveOverwritesPreviousSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")
	s := NewFileStore(path)
	ctx := context.Background()

	if err := s.Save(ctx, testDefinitions()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Save(ctx, map[string]models.DeviceDefinition{}); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Load() after overwrite = %v, want empty", got)
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nope", "devices.json"))

	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v, want nil for absent file", err)
	}
	if len(got) != 0 {
		t.Errorf("Load() = %v, want empty map", got)
	}
}

func TestLoadCorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")
	if err := os.WriteFile(path, []byte(`{"rack-01": {broken`), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(path)
	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v, want recovery from corrupt snapshot", err)
	}
	if len(got) != 0 {
		t.Errorf("Load() = %v, want empty map", got)
	}
}

func TestSaveCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nested", "devices.json")
	s := NewFileStore(path)

	if err := s.Save(context.Background(), testDefinitions()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("snapshot file missing: %v", err)
	}
}
