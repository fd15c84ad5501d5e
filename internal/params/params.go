package params

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/guidoenr/backdrop/internal/ascii"
	"github.com/guidoenr/backdrop/internal/dither"
	"github.com/guidoenr/backdrop/internal/noise"
	"github.com/guidoenr/backdrop/internal/sdf"
	"github.com/guidoenr/backdrop/internal/textmesh"
)

// Waves configures the dithered noise field.
type Waves struct {
	Speed                  float64    `json:"waveSpeed"`
	Frequency              float64    `json:"waveFrequency"`
	Amplitude              float64    `json:"waveAmplitude"`
	Color                  [3]float64 `json:"waveColor"`
	ColorNum               int        `json:"colorNum"`
	PixelSize              int        `json:"pixelSize"`
	DisableAnimation       bool       `json:"disableAnimation"`
	EnableMouseInteraction bool       `json:"enableMouseInteraction"`
	MouseRadius            float64    `json:"mouseRadius"`
	NoiseBasis             string     `json:"noiseBasis"`
	Seed                   int64      `json:"seed"`
	MouseDamping           float64    `json:"mouseDamping"`
}

// ASCII configures the text plane converter.
type ASCII struct {
	Text            string   `json:"text"`
	ASCIIFontSize   float64  `json:"asciiFontSize"`
	TextFontSize    float64  `json:"textFontSize"`
	TextColor       string   `json:"textColor"`
	PlaneBaseHeight float64  `json:"planeBaseHeight"`
	EnableWaves     bool     `json:"enableWaves"`
	Invert          bool     `json:"invert"`
	Charset         string   `json:"charset"`
	TextFont        string   `json:"textFont"`
	ASCIIFont       string   `json:"asciiFont"`
	Gradient        []string `json:"gradient"`
	Blend           string   `json:"blend"`
	// HueDamping and RotationDamping are per-frame fractions at 60 fps.
	HueDamping      float64 `json:"hueDamping"`
	RotationDamping float64 `json:"rotationDamping"`
}

// Shape configures the SDF outline.
type Shape struct {
	Variation    int     `json:"variation"`
	PixelRatio   float64 `json:"pixelRatio"`
	ShapeSize    float64 `json:"shapeSize"`
	Roundness    float64 `json:"roundness"`
	BorderSize   float64 `json:"borderSize"`
	CircleSize   float64 `json:"circleSize"`
	CircleEdge   float64 `json:"circleEdge"`
	MouseDamping float64 `json:"mouseDamping"`
}

// Config holds the settings of every effect.
type Config struct {
	Waves Waves `json:"waves"`
	ASCII ASCII `json:"ascii"`
	Shape Shape `json:"shape"`
}

// Defaults returns the stock configuration.
func Defaults() Config {
	return Config{
		Waves: Waves{
			Speed:                  0.05,
			Frequency:              3,
			Amplitude:              0.3,
			Color:                  [3]float64{0.5, 0.5, 0.5},
			ColorNum:               4,
			PixelSize:              2,
			EnableMouseInteraction: true,
			MouseRadius:            1,
			NoiseBasis:             "perlin",
			MouseDamping:           8,
		},
		ASCII: ASCII{
			Text:            "David!",
			ASCIIFontSize:   8,
			TextFontSize:    200,
			TextColor:       "#fdf9f3",
			PlaneBaseHeight: 8,
			EnableWaves:     true,
			Invert:          true,
			Charset:         "default",
			TextFont:        "sans-bold",
			ASCIIFont:       "mono",
			Gradient:        append([]string(nil), ascii.DefaultGradient...),
			Blend:           ascii.BlendDifference,
			HueDamping:      0.075,
			RotationDamping: 0.05,
		},
		Shape: Shape{
			Variation:    0,
			PixelRatio:   2,
			ShapeSize:    1.7,
			Roundness:    0.4,
			BorderSize:   0.012,
			CircleSize:   0.25,
			CircleEdge:   1,
			MouseDamping: 8,
		},
	}
}

// Load reads a JSON file over the defaults. Missing keys keep their default.
func Load(path string) (Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg as indented JSON.
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Waves.Validate(); err != nil {
		return err
	}
	if err := c.ASCII.Validate(); err != nil {
		return err
	}
	return c.Shape.Validate()
}

// Validate checks the wave settings.
func (w Waves) Validate() error {
	if err := w.Dither().Validate(); err != nil {
		return err
	}
	if w.MouseRadius < 0 {
		return fmt.Errorf("waves: mouseRadius must be >= 0 (got %.2f)", w.MouseRadius)
	}
	if w.MouseDamping <= 0 {
		return fmt.Errorf("waves: mouseDamping must be > 0 (got %.2f)", w.MouseDamping)
	}
	return nil
}

// Dither returns the quantization parameters.
func (w Waves) Dither() dither.Params {
	return dither.Params{ColorLevels: w.ColorNum, CellPixelSize: w.PixelSize}
}

// Field returns the noise field for these settings.
func (w Waves) Field() noise.Field {
	return noise.Field{
		Basis:     noise.NewBasis(w.NoiseBasis, w.Seed),
		Speed:     w.Speed,
		Frequency: w.Frequency,
		Amplitude: w.Amplitude,
		Color:     w.Color,
	}
}

// Validate checks the ASCII settings.
func (a ASCII) Validate() error {
	if a.ASCIIFontSize <= 0 {
		return fmt.Errorf("ascii: asciiFontSize must be > 0 (got %.1f)", a.ASCIIFontSize)
	}
	if err := a.TextSpec().Validate(); err != nil {
		return err
	}
	if _, err := ascii.NewRamp(ascii.Charset(a.Charset), a.Invert); err != nil {
		return err
	}
	if _, err := ascii.ParseGradient(a.Gradient); err != nil {
		return err
	}
	switch a.Blend {
	case ascii.BlendNormal, ascii.BlendDifference:
	default:
		return fmt.Errorf("ascii: unknown blend %q", a.Blend)
	}
	for _, f := range []float64{a.HueDamping, a.RotationDamping} {
		if f <= 0 || f >= 1 {
			return fmt.Errorf("ascii: damping fractions must be in (0, 1) (got %.3f)", f)
		}
	}
	return nil
}

// TextSpec returns the text raster description.
func (a ASCII) TextSpec() textmesh.Spec {
	return textmesh.Spec{
		Text:       a.Text,
		Font:       a.TextFont,
		SizePx:     a.TextFontSize,
		Color:      a.TextColor,
		BaseHeight: a.PlaneBaseHeight,
	}
}

// Validate checks the shape settings.
func (s Shape) Validate() error {
	if err := s.SDF().Validate(); err != nil {
		return err
	}
	if s.PixelRatio <= 0 {
		return fmt.Errorf("shape: pixelRatio must be > 0 (got %.2f)", s.PixelRatio)
	}
	if s.MouseDamping <= 0 {
		return fmt.Errorf("shape: mouseDamping must be > 0 (got %.2f)", s.MouseDamping)
	}
	return nil
}

// SDF returns the outline description.
func (s Shape) SDF() sdf.Shape {
	return sdf.Shape{
		Variation:  s.Variation,
		Size:       float32(s.ShapeSize),
		Roundness:  float32(s.Roundness),
		Border:     float32(s.BorderSize),
		CircleSize: float32(s.CircleSize),
		CircleEdge: float32(s.CircleEdge),
	}
}

// ParseColor converts a hex colour into a wave colour triple.
func ParseColor(hex string) ([3]float64, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return [3]float64{}, fmt.Errorf("parse colour %q: %w", hex, err)
	}
	return [3]float64{c.R, c.G, c.B}, nil
}
