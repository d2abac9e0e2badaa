package cost

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/schemadapt/pkg/bpc"
)

func TestColorChangeCost(t *testing.T) {
	cfg := &Config{
		DefaultColorChangeCost: 0.5,
		ColorChanges: []ColorChange{
			{From: "signal", To: "power", Cost: 2},
			{From: "ground", To: "signal", Cost: 3},
			{From: "signal", To: "ground", Cost: 4},
		},
	}
	tests := []struct {
		name string
		a, b bpc.Color
		want float64
	}{
		{"same color", "signal", "signal", 0},
		{"direct entry", "signal", "power", 2},
		{"reverse entry", "power", "signal", 2},
		{"direct wins over reverse", "signal", "ground", 4},
		{"other direct", "ground", "signal", 3},
		{"default", "power", "ground", 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.ColorChangeCost(tt.a, tt.b); got != tt.want {
				t.Errorf("ColorChangeCost(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestMovePinCost(t *testing.T) {
	cfg := &Config{CostPerUnitDistanceMovingPin: 2}
	if got := cfg.MovePinCost(r2.Vec{}, r2.Vec{X: 3, Y: 4}); got != 10 {
		t.Errorf("MovePinCost = %v, want 10", got)
	}
	if got := cfg.MovePinCost(r2.Vec{X: 1}, r2.Vec{X: 1}); got != 0 {
		t.Errorf("MovePinCost(same) = %v, want 0", got)
	}
}

func TestDecode(t *testing.T) {
	src := `
base_operation_cost = 2.5

[[color_change]]
from = "signal"
to = "power"
cost = 7.0
`
	cfg, err := Decode(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if cfg.BaseOperationCost != 2.5 {
		t.Errorf("BaseOperationCost = %v, want 2.5", cfg.BaseOperationCost)
	}
	if cfg.CostPerUnitDistanceMovingPin != DefaultCostPerUnitDistance {
		t.Errorf("CostPerUnitDistanceMovingPin = %v, want default %v", cfg.CostPerUnitDistanceMovingPin, DefaultCostPerUnitDistance)
	}
	if got := cfg.ColorChangeCost("power", "signal"); got != 7 {
		t.Errorf("ColorChangeCost = %v, want 7", got)
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"negative base", "base_operation_cost = -1.0"},
		{"negative distance", "cost_per_unit_distance_moving_pin = -0.1"},
		{"same colors", "[[color_change]]\nfrom = \"a\"\nto = \"a\"\ncost = 1.0"},
		{"missing color", "[[color_change]]\nfrom = \"a\"\ncost = 1.0"},
		{"unknown key", "base_cost = 1.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.src))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Decode err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "costs.toml")
	if err := os.WriteFile(path, []byte("default_color_change_cost = 9.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultColorChangeCost != 9 {
		t.Errorf("DefaultColorChangeCost = %v, want 9", cfg.DefaultColorChangeCost)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load(missing) should fail")
	}
}

func TestHash(t *testing.T) {
	a, b := Default(), Default()
	if a.Hash() != b.Hash() {
		t.Error("equal configs must hash equally")
	}
	b.BaseOperationCost = 3
	if a.Hash() == b.Hash() {
		t.Error("different configs must hash differently")
	}
}

func TestValidate_Nil(t *testing.T) {
	var c *Config
	if err := c.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Validate(nil) = %v, want ErrInvalidConfig", err)
	}
}
