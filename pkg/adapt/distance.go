package adapt

import (
	"fmt"

	"github.com/matzehuels/schemadapt/pkg/bpc"
	"github.com/matzehuels/schemadapt/pkg/correspondence"
	"github.com/matzehuels/schemadapt/pkg/cost"
)

// Distance is the estimated cost of adapting one graph into another.
type Distance struct {
	Value          float64 `json:"value"`
	UnmatchedBoxes int     `json:"unmatched_boxes"`
	UnmatchedPins  int     `json:"unmatched_pins"`
	Recolors       int     `json:"recolors"`
	Moves          int     `json:"moves"`
}

// HeuristicDistance estimates the cost of adapting a into b without
// modifying either graph. It charges BaseOperationCost for every box of a
// without a counterpart and for each of its pins, plus the recolor and
// reposition prices of matched pins that differ.
//
// Only a's side is charged: boxes of b without a counterpart are free, so the
// distance is not symmetric.
func HeuristicDistance(a, b *bpc.Graph, costs *cost.Config, opts ...correspondence.Option) (Distance, error) {
	if err := checkGraphs(a, b); err != nil {
		return Distance{}, err
	}
	if costs == nil {
		costs = cost.Default()
	}
	if err := costs.Validate(); err != nil {
		return Distance{}, err
	}

	corr := correspondence.Solve(a, b, opts...)
	var d Distance
	for _, box := range a.Boxes() {
		if _, ok := corr.Boxes[box.ID]; ok {
			continue
		}
		pins := len(a.PinsOf(box.ID))
		d.UnmatchedBoxes++
		d.UnmatchedPins += pins
		d.Value += float64(1+pins) * costs.BaseOperationCost
	}

	pins := corr.Pins()
	for _, s := range pins.Keys() {
		sp, _ := a.PinByNodeID(s)
		tp, _ := b.PinByNodeID(pins[s])
		if sp.Color != tp.Color {
			d.Recolors++
			d.Value += costs.ColorChangeCost(sp.Color, tp.Color)
		}
		if sp.Offset != tp.Offset {
			d.Moves++
			d.Value += costs.MovePinCost(sp.Offset, tp.Offset)
		}
	}
	return d, nil
}

func checkGraphs(initial, target *bpc.Graph) error {
	if initial == nil || target == nil {
		return fmt.Errorf("nil graph: %w", ErrInvalidGraph)
	}
	if err := initial.Validate(); err != nil {
		return fmt.Errorf("initial graph: %w: %w", ErrInvalidGraph, err)
	}
	if err := target.Validate(); err != nil {
		return fmt.Errorf("target graph: %w: %w", ErrInvalidGraph, err)
	}
	return nil
}
