package issue

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with defaults failed: %v", err)
	}

	if got := len(cfg.Requirements); got != 20 {
		t.Errorf("expected 20 categories, got %d", got)
	}
	if cfg.Fallback != "Other Civic Complaints" {
		t.Errorf("unexpected fallback category: %q", cfg.Fallback)
	}
	if !cfg.Valid("Fire Hazards") {
		t.Error("Fire Hazards should be a valid category")
	}
	if cfg.Valid("Potholes") {
		t.Error("Potholes should not be a valid category")
	}
}

func TestRequirementFor(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with defaults failed: %v", err)
	}

	testCases := []struct {
		name     string
		category string

		expectPhoto  bool
		expectPrompt bool
	}{
		{
			name:     "Photo required, no prompt",
			category: "Fire Hazards",

			expectPhoto:  true,
			expectPrompt: false,
		}, {
			name:     "No photo, custom prompt",
			category: "Electricity / Power",

			expectPhoto:  false,
			expectPrompt: true,
		}, {
			name:     "Photo and prompt",
			category: "Street Safety",

			expectPhoto:  true,
			expectPrompt: true,
		}, {
			name:     "Unknown category falls back",
			category: "Time Travel Complaints",

			expectPhoto:  false,
			expectPrompt: false,
		},
	}

	for _, testCase := range testCases {
		r := cfg.RequirementFor(testCase.category)
		if r.PhotoRequired != testCase.expectPhoto {
			t.Errorf("%s: expected photo_required=%v, got %v", testCase.name, testCase.expectPhoto, r.PhotoRequired)
		}
		if (r.ExtraPrompt != "") != testCase.expectPrompt {
			t.Errorf("%s: expected prompt presence=%v, got %q", testCase.name, testCase.expectPrompt, r.ExtraPrompt)
		}
	}
}

func TestDepartmentFor(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with defaults failed: %v", err)
	}

	if d := cfg.DepartmentFor("Fire Hazards"); d != "Fire Department" {
		t.Errorf("expected Fire Department, got %q", d)
	}
	if d := cfg.DepartmentFor("No Such Category"); d != "General Administration" {
		t.Errorf("expected General Administration fallback, got %q", d)
	}
}

func TestScoringTables(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with defaults failed: %v", err)
	}

	if w := cfg.KeywordWeights["earthquake"]; w != 1.0 {
		t.Errorf("expected earthquake weight 1.0, got %v", w)
	}
	if w := cfg.KeywordWeights["noise"]; w != 0.3 {
		t.Errorf("expected noise weight 0.3, got %v", w)
	}
	if w := cfg.FrequencyWeights["Fire Hazards"]; w != 0.9 {
		t.Errorf("expected Fire Hazards frequency 0.9, got %v", w)
	}
	if cfg.DefaultFrequency != 0.3 {
		t.Errorf("expected default frequency 0.3, got %v", cfg.DefaultFrequency)
	}
}

func TestLoadOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "issues.yaml")
	override := []byte("default_frequency: 0.4\n")
	if err := os.WriteFile(path, override, 0o644); err != nil {
		t.Fatalf("writing override file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load with override failed: %v", err)
	}
	if cfg.DefaultFrequency != 0.4 {
		t.Errorf("override not applied, default frequency is %v", cfg.DefaultFrequency)
	}
	// Untouched keys keep their defaults.
	if got := len(cfg.Requirements); got != 20 {
		t.Errorf("override should not drop categories, got %d", got)
	}
}

func TestLoadRejectsBadWeights(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "issues.yaml")
	override := []byte("keyword_weights:\n  fire: 1.5\n")
	if err := os.WriteFile(path, override, 0o644); err != nil {
		t.Fatalf("writing override file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for keyword weight outside [0,1]")
	}
}
