package params

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if cfg.Waves.ColorNum != 4 || cfg.Waves.PixelSize != 2 || cfg.ASCII.ASCIIFontSize != 8 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Shape.ShapeSize != 1.7 || cfg.Shape.CircleEdge != 1 {
		t.Fatalf("unexpected shape defaults: %+v", cfg.Shape)
	}
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	data := `{"waves": {"colorNum": 2}, "ascii": {"text": "hello"}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Waves.ColorNum != 2 || cfg.ASCII.Text != "hello" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Waves.Frequency != 3 || cfg.ASCII.TextColor != "#fdf9f3" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"levels":  `{"waves": {"colorNum": 1}}`,
		"colour":  `{"ascii": {"textColor": "nope"}}`,
		"shape":   `{"shape": {"variation": 9}}`,
		"unknown": `{"bogus": 1}`,
	}
	for name, data := range cases {
		path := filepath.Join(dir, name+".json")
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.json")
	cfg := Defaults()
	cfg.Shape.Variation = 3
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Shape.Variation != 3 {
		t.Fatalf("variation=%d", got.Shape.Variation)
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff0000")
	if err != nil || c != [3]float64{1, 0, 0} {
		t.Fatalf("parse: %v %v", c, err)
	}
}
