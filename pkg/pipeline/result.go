package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/schemadapt/pkg/adapt"
	"github.com/matzehuels/schemadapt/pkg/bpc"
	"github.com/matzehuels/schemadapt/pkg/editscript"
	"github.com/matzehuels/schemadapt/pkg/graph"
)

// AdaptResult is the outcome of Runner.Adapt.
type AdaptResult struct {
	State      string
	Cost       float64
	Iterations int
	Graph      *bpc.Graph
	Script     []editscript.Operation
	Rounds     []adapt.Round

	// CacheHit is set when the result came from the cache.
	CacheHit bool
}

// Solved reports whether the adaptation converged.
func (r *AdaptResult) Solved() bool { return r.State == adapt.StateSolved.String() }

// adaptWire is the JSON form of AdaptResult, used for the cache and the API.
type adaptWire struct {
	State      string          `json:"state"`
	Cost       float64         `json:"cost"`
	Iterations int             `json:"iterations"`
	Graph      graph.Graph     `json:"graph"`
	Script     json.RawMessage `json:"script"`
	Rounds     []adapt.Round   `json:"rounds"`
	CacheHit   bool            `json:"cache_hit,omitempty"`
}

func newAdaptResult(res adapt.Result) *AdaptResult {
	return &AdaptResult{
		State:      res.State.String(),
		Cost:       res.Cost,
		Iterations: res.Iterations,
		Graph:      res.Graph,
		Script:     res.Script,
		Rounds:     res.Rounds,
	}
}

// MarshalJSON encodes the result with the graph in its serialized form.
func (r *AdaptResult) MarshalJSON() ([]byte, error) {
	script, err := editscript.MarshalScript(r.Script)
	if err != nil {
		return nil, err
	}
	w := adaptWire{
		State:      r.State,
		Cost:       r.Cost,
		Iterations: r.Iterations,
		Script:     script,
		Rounds:     r.Rounds,
		CacheHit:   r.CacheHit,
	}
	if r.Graph != nil {
		w.Graph = graph.FromBPC(r.Graph)
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes and validates a result.
func (r *AdaptResult) UnmarshalJSON(data []byte) error {
	var w adaptWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	g, err := graph.ToBPC(w.Graph)
	if err != nil {
		return fmt.Errorf("result graph: %w", err)
	}
	var ops []editscript.Operation
	if len(w.Script) > 0 {
		if ops, err = editscript.UnmarshalScript(w.Script); err != nil {
			return fmt.Errorf("result script: %w", err)
		}
	}
	*r = AdaptResult{
		State:      w.State,
		Cost:       w.Cost,
		Iterations: w.Iterations,
		Graph:      g,
		Script:     ops,
		Rounds:     w.Rounds,
		CacheHit:   w.CacheHit,
	}
	return nil
}

// DiffResult is the outcome of Runner.Diff.
type DiffResult struct {
	Script   []editscript.Operation `json:"-"`
	Stats    editscript.Stats       `json:"stats"`
	Boxes    map[string]string      `json:"boxes"`
	Networks map[string]string      `json:"networks"`
	Pins     map[string]string      `json:"pins"`
}

// MarshalJSON encodes the diff with its script.
func (d *DiffResult) MarshalJSON() ([]byte, error) {
	script, err := editscript.MarshalScript(d.Script)
	if err != nil {
		return nil, err
	}
	type plain DiffResult
	return json.Marshal(struct {
		*plain
		Script json.RawMessage `json:"script"`
	}{(*plain)(d), script})
}
