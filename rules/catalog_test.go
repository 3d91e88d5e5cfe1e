package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog() failed: %v", err)
	}

	wantOrder := []string{
		"timing_belt", "gearbox_service", "brake_fluid", "spark_plugs", "oil_service",
		"dpf", "brakes", "suspension", "service_history",
	}
	if len(c.Rules) != len(wantOrder) {
		t.Fatalf("catalog has %d rules, want %d", len(c.Rules), len(wantOrder))
	}
	for i, id := range wantOrder {
		if c.Rules[i].ID != id {
			t.Errorf("rule %d = %s, want %s", i, c.Rules[i].ID, id)
		}
	}

	fb, err := c.Get("service_history")
	if err != nil {
		t.Fatalf("Get(service_history) failed: %v", err)
	}
	if !fb.Fallback {
		t.Error("service_history should be the fallback rule")
	}
	if fb.Bands[0].BaseLow != 0 || fb.Bands[0].BaseHigh != 0 {
		t.Errorf("fallback should cost nothing, got %v-%v", fb.Bands[0].BaseLow, fb.Bands[0].BaseHigh)
	}
}

func TestDefaultCatalogWeights(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog() failed: %v", err)
	}

	want := map[string]int{
		"timing_belt":     10,
		"suspension":      7,
		"brakes":          6,
		"dpf":             5,
		"gearbox_service": 4,
		"brake_fluid":     3,
		"spark_plugs":     3,
		"oil_service":     3,
		"service_history": 1,
	}
	for id, weight := range want {
		r, err := c.Get(id)
		if err != nil {
			t.Errorf("Get(%s) failed: %v", id, err)
			continue
		}
		if r.Weight != weight {
			t.Errorf("%s weight = %d, want %d", id, r.Weight, weight)
		}
	}
}

// TestDefaultCatalogIsACopy verifies callers cannot alter the embedded catalog
func TestDefaultCatalogIsACopy(t *testing.T) {
	a, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog() failed: %v", err)
	}
	a.Rules[0].Weight = 99

	b, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog() failed: %v", err)
	}
	if b.Rules[0].Weight == 99 {
		t.Error("modifying one catalog should not affect the next")
	}
}

func TestParseCatalog_UnknownField(t *testing.T) {
	doc := `
version: 1
rules:
  - id: brakes
    category: brakes
    weight: 6
    bands:
      - when: miles >= 70000
        label: Brakes
        status: verify
        base_low: 300
        base_high: 600
        multipler: 0.5
        why_flagged: x
        why_it_matters: y
        questions: ["z?"]
`
	_, err := ParseCatalog(strings.NewReader(doc))
	if err == nil {
		t.Fatal("Expected error for misspelled field, got nil")
	}
	if !strings.Contains(err.Error(), "multipler") {
		t.Errorf("Expected error to name the unknown field, got: %v", err)
	}
}

func TestParseCatalog_Invalid(t *testing.T) {
	doc := `
version: 1
rules:
  - id: brakes
    category: brakes
    weight: 6
    bands:
      - when: miles >=
        label: Brakes
        status: verify
        base_low: 300
        base_high: 600
        multiplier: 0.5
        why_flagged: x
        why_it_matters: y
        questions: ["z?"]
`
	if _, err := ParseCatalog(strings.NewReader(doc)); err == nil {
		t.Fatal("Expected compile error, got nil")
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, defaultCatalog, 0o600); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}

	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() failed: %v", err)
	}
	if len(c.Rules) == 0 {
		t.Error("loaded catalog should contain rules")
	}

	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}

func TestCatalogGet_NotFound(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog() failed: %v", err)
	}
	if _, err := c.Get("turbo"); err == nil {
		t.Error("Expected error for unknown rule, got nil")
	}
}
