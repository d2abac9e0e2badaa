package adapt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/schemadapt/pkg/adjacency"
	"github.com/matzehuels/schemadapt/pkg/bpc"
	"github.com/matzehuels/schemadapt/pkg/correspondence"
	"github.com/matzehuels/schemadapt/pkg/cost"
	"github.com/matzehuels/schemadapt/pkg/editscript"
)

// DefaultMaxIterations bounds the number of rounds of a [Transformer].
const DefaultMaxIterations = 5000

var (
	// ErrInvalidGraph is returned when the initial or target graph fails validation.
	ErrInvalidGraph = errors.New("invalid graph")

	// ErrInvalidMaxIterations is returned for a non-positive iteration budget.
	ErrInvalidMaxIterations = errors.New("max iterations must be positive")

	// ErrNotRunning is returned by Solve once the transformer has terminated.
	ErrNotRunning = errors.New("transformer already terminated")
)

// State is the lifecycle of a [Transformer].
type State int

const (
	StateRunning State = iota
	StateSolved
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateSolved:
		return "solved"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Round summarizes one completed iteration.
type Round struct {
	Iteration int              `json:"iteration"`
	Ops       editscript.Stats `json:"ops"`
	Recolors  int              `json:"recolors"`
	Moves     int              `json:"moves"`
	Cost      float64          `json:"cost"` // cost added by this round
	Duration  time.Duration    `json:"duration_ns"`
}

// Result is the outcome of [Transformer.Solve].
type Result struct {
	State      State
	Cost       float64
	Iterations int
	Graph      *bpc.Graph
	Script     []editscript.Operation // every operation applied, in order
	Rounds     []Round
}

// Option configures a [Transformer].
type Option func(*Transformer)

// WithMaxIterations overrides [DefaultMaxIterations].
func WithMaxIterations(n int) Option {
	return func(t *Transformer) { t.maxIterations = n }
}

// WithNetworkPolicy selects how networks are matched each round.
func WithNetworkPolicy(p correspondence.NetworkPolicy) Option {
	return func(t *Transformer) {
		if p != nil {
			t.policy = p
		}
	}
}

// WithLogger sets the logger for per-round debug output.
func WithLogger(l *log.Logger) Option {
	return func(t *Transformer) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithRoundHook registers fn to be called after every completed round.
func WithRoundHook(fn func(Round)) Option {
	return func(t *Transformer) { t.onRound = fn }
}

// Transformer adapts a working graph toward a target graph.
//
// A Transformer is not safe for concurrent use. Independent transformers
// share no state and may run in parallel.
type Transformer struct {
	graph  *bpc.Graph
	target *bpc.Graph
	costs  *cost.Config

	maxIterations int
	policy        correspondence.NetworkPolicy
	logger        *log.Logger
	onRound       func(Round)

	state      State
	cost       float64
	iterations int
	rounds     []Round
	script     []editscript.Operation
}

// New creates a transformer. Both graphs are cloned and validated; costs
// defaults to [cost.Default] when nil.
func New(initial, target *bpc.Graph, costs *cost.Config, opts ...Option) (*Transformer, error) {
	if err := checkGraphs(initial, target); err != nil {
		return nil, err
	}
	if costs == nil {
		costs = cost.Default()
	}
	if err := costs.Validate(); err != nil {
		return nil, err
	}

	t := &Transformer{
		graph:         initial.Clone(),
		target:        target.Clone(),
		costs:         costs,
		maxIterations: DefaultMaxIterations,
		policy:        correspondence.DefaultNetworkPolicy,
		logger:        log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.maxIterations <= 0 {
		return nil, fmt.Errorf("%d: %w", t.maxIterations, ErrInvalidMaxIterations)
	}
	return t, nil
}

// Solve runs rounds until the transformer is solved or the iteration budget
// is spent. Errors only arise from inconsistent intermediate state and leave
// the transformer running.
func (t *Transformer) Solve() (Result, error) {
	return t.SolveContext(context.Background())
}

// SolveContext is Solve with cancellation checked between rounds. A
// cancelled transformer stays running and can be resumed.
func (t *Transformer) SolveContext(ctx context.Context) (Result, error) {
	if t.state != StateRunning {
		return t.result(), ErrNotRunning
	}
	start := time.Now()
	for t.state == StateRunning {
		if err := ctx.Err(); err != nil {
			return t.result(), err
		}
		if t.iterations >= t.maxIterations {
			t.state = StateFailed
			break
		}
		done, err := t.step()
		if err != nil {
			return t.result(), fmt.Errorf("round %d: %w", t.iterations+1, err)
		}
		if done {
			t.state = StateSolved
		}
	}
	t.logger.Info("adaptation finished",
		"state", t.state,
		"iterations", t.iterations,
		"cost", t.cost,
		"ops", len(t.script),
		"duration", time.Since(start))
	return t.result(), nil
}

// step runs one round and reports whether the graphs already matched.
func (t *Transformer) step() (bool, error) {
	start := time.Now()
	corr := correspondence.Solve(t.graph, t.target, correspondence.WithNetworkPolicy(t.policy))

	round := Round{Iteration: t.iterations + 1}
	var err error
	round.Recolors, round.Moves, round.Cost, err = t.alignPins(corr.Pins())
	if err != nil {
		return false, err
	}

	src := adjacency.FromGraph(t.graph)
	tgt := adjacency.FromGraph(t.target)
	ops, err := editscript.Synthesize(src, tgt, corr.Nodes)
	if err != nil {
		return false, err
	}
	if len(ops) == 0 {
		t.cost += round.Cost
		t.logger.Debug("graphs match", "iteration", t.iterations, "alignment_cost", round.Cost)
		return true, nil
	}

	a := newApplier(t.graph, t.target, src, corr)
	for _, op := range ops {
		if err := a.apply(op); err != nil {
			return false, err
		}
	}
	t.graph.Reorder(a.order())

	round.Ops = editscript.Summarize(ops)
	round.Cost += float64(round.Ops.Structural()) * t.costs.BaseOperationCost
	round.Duration = time.Since(start)

	t.cost += round.Cost
	t.iterations++
	t.script = append(t.script, ops...)
	t.rounds = append(t.rounds, round)

	t.logger.Debug("round",
		"iteration", round.Iteration,
		"deletes", round.Ops.Deletes,
		"creates", round.Ops.Creates,
		"swaps", round.Ops.Swaps,
		"disconnects", round.Ops.Disconnects,
		"connects", round.Ops.Connects,
		"recolors", round.Recolors,
		"moves", round.Moves,
		"cost", round.Cost)
	if t.onRound != nil {
		t.onRound(round)
	}
	return false, nil
}

// alignPins copies color and offset from target pins onto their matched
// working pins and returns how many changed and what it cost.
func (t *Transformer) alignPins(pins correspondence.Mapping) (recolors, moves int, total float64, err error) {
	for _, s := range pins.Keys() {
		sp, ok := t.graph.PinByNodeID(s)
		if !ok {
			continue
		}
		tp, ok := t.target.PinByNodeID(pins[s])
		if !ok {
			continue
		}
		if sp.Color != tp.Color {
			if err := t.graph.Recolor(sp.BoxID, sp.ID, tp.Color); err != nil {
				return recolors, moves, total, fmt.Errorf("align %s: %w", s, err)
			}
			total += t.costs.ColorChangeCost(sp.Color, tp.Color)
			recolors++
		}
		if sp.Offset != tp.Offset {
			if err := t.graph.Reposition(sp.BoxID, sp.ID, tp.Offset); err != nil {
				return recolors, moves, total, fmt.Errorf("align %s: %w", s, err)
			}
			total += t.costs.MovePinCost(sp.Offset, tp.Offset)
			moves++
		}
	}
	return recolors, moves, total, nil
}

func (t *Transformer) result() Result {
	return Result{
		State:      t.state,
		Cost:       t.cost,
		Iterations: t.iterations,
		Graph:      t.graph.Clone(),
		Script:     append([]editscript.Operation(nil), t.script...),
		Rounds:     append([]Round(nil), t.rounds...),
	}
}

// State returns the current lifecycle state.
func (t *Transformer) State() State { return t.state }

// Solved reports whether the working graph matches the target.
func (t *Transformer) Solved() bool { return t.state == StateSolved }

// Failed reports whether the iteration budget ran out.
func (t *Transformer) Failed() bool { return t.state == StateFailed }

// Graph returns a copy of the working graph.
func (t *Transformer) Graph() *bpc.Graph { return t.graph.Clone() }

// Cost returns the accumulated cost.
func (t *Transformer) Cost() float64 { return t.cost }

// Iterations returns the number of rounds that applied a non-empty script.
func (t *Transformer) Iterations() int { return t.iterations }

// MaxIterations returns the iteration budget.
func (t *Transformer) MaxIterations() int { return t.maxIterations }

// Rounds returns the per-round summaries.
func (t *Transformer) Rounds() []Round { return append([]Round(nil), t.rounds...) }
