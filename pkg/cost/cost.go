// Package cost prices the edits applied while adapting a template graph.
//
// A [Config] is read-only once built and is shared by the transformer and
// the heuristic distance so that rankings stay consistent with the cost of
// an actual adaptation. Configs load from TOML:
//
//	base_operation_cost = 1.0
//	cost_per_unit_distance_moving_pin = 0.1
//	default_color_change_cost = 0.5
//
//	[[color_change]]
//	from = "signal"
//	to = "power"
//	cost = 2.0
package cost

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/schemadapt/pkg/bpc"
)

// ErrInvalidConfig is returned when a config fails validation.
var ErrInvalidConfig = errors.New("invalid cost config")

// Defaults used by [Default].
const (
	DefaultBaseOperationCost   = 1.0
	DefaultCostPerUnitDistance = 0.1
	DefaultColorChangeCost     = 0.5
)

var validate = validator.New()

// ColorChange prices recoloring a pin from one color to another. Entries
// apply in both directions unless the reverse pair has its own entry.
type ColorChange struct {
	From bpc.Color `toml:"from" json:"from" validate:"required"`
	To   bpc.Color `toml:"to" json:"to" validate:"required,nefield=From"`
	Cost float64   `toml:"cost" json:"cost" validate:"gte=0"`
}

// Config prices structural, recolor, and reposition edits.
type Config struct {
	BaseOperationCost            float64       `toml:"base_operation_cost" json:"base_operation_cost" validate:"gte=0"`
	CostPerUnitDistanceMovingPin float64       `toml:"cost_per_unit_distance_moving_pin" json:"cost_per_unit_distance_moving_pin" validate:"gte=0"`
	DefaultColorChangeCost       float64       `toml:"default_color_change_cost" json:"default_color_change_cost" validate:"gte=0"`
	ColorChanges                 []ColorChange `toml:"color_change" json:"color_change,omitempty" validate:"dive"`
}

// Default returns the built-in prices.
func Default() *Config {
	return &Config{
		BaseOperationCost:            DefaultBaseOperationCost,
		CostPerUnitDistanceMovingPin: DefaultCostPerUnitDistance,
		DefaultColorChangeCost:       DefaultColorChangeCost,
	}
}

// Load reads a TOML config file. Keys missing from the file keep their
// [Default] values.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses a TOML config and validates it.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q: %w", undecoded[0].String(), ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every price is non-negative and every color change
// names two distinct colors.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("nil config: %w", ErrInvalidConfig)
	}
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("%s: failed %q check: %w", e.Namespace(), e.Tag(), ErrInvalidConfig)
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ColorChangeCost returns the price of recoloring a pin from a to b: zero if
// the colors are equal, otherwise the (a,b) entry, else the (b,a) entry, else
// DefaultColorChangeCost.
func (c *Config) ColorChangeCost(a, b bpc.Color) float64 {
	if a == b {
		return 0
	}
	reverse, found := 0.0, false
	for _, cc := range c.ColorChanges {
		if cc.From == a && cc.To == b {
			return cc.Cost
		}
		if !found && cc.From == b && cc.To == a {
			reverse, found = cc.Cost, true
		}
	}
	if found {
		return reverse
	}
	return c.DefaultColorChangeCost
}

// MovePinCost returns the price of moving a pin offset from one position to
// another: Euclidean distance times CostPerUnitDistanceMovingPin.
func (c *Config) MovePinCost(from, to r2.Vec) float64 {
	return r2.Norm(r2.Sub(to, from)) * c.CostPerUnitDistanceMovingPin
}

// Hash returns a stable digest of the config for use in cache keys.
func (c *Config) Hash() string {
	data, _ := json.Marshal(c)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
