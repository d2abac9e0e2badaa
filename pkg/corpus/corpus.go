// Package corpus loads template schematics and ranks them against a circuit.
//
// A [Source] lists and loads named templates. [DirSource] reads one JSON
// file per template from a directory; [MongoSource] reads one document per
// template from a MongoDB collection; [MemSource] keeps templates in memory.
//
// [Rank] computes the heuristic distance from every template to a target
// graph in parallel and returns the templates ordered from best to worst.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/schemadapt/pkg/bpc"
)

// ErrTemplateNotFound is returned when a source has no template by that name.
var ErrTemplateNotFound = errors.New("template not found")

// Template is a named, laid-out schematic graph.
type Template struct {
	Name  string
	Graph *bpc.Graph
}

// Source provides templates by name.
type Source interface {
	// Names returns the template names in ascending order.
	Names(ctx context.Context) ([]string, error)

	// Get loads one template. Unknown names yield ErrTemplateNotFound.
	Get(ctx context.Context, name string) (Template, error)
}

// DefaultWorkers bounds concurrent loads and distance evaluations.
const DefaultWorkers = 8

// LoadAll loads every template of src using up to workers goroutines.
// The result is in name order.
func LoadAll(ctx context.Context, src Source, workers int) ([]Template, error) {
	names, err := src.Names(ctx)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}

	out := make([]Template, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range names {
		g.Go(func() error {
			t, err := src.Get(ctx, name)
			if err != nil {
				return fmt.Errorf("load %s: %w", name, err)
			}
			out[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// MemSource is an in-memory Source.
type MemSource struct {
	mu        sync.RWMutex
	templates map[string]*bpc.Graph
}

// NewMemSource creates a source holding the given templates.
func NewMemSource(templates ...Template) *MemSource {
	s := &MemSource{templates: make(map[string]*bpc.Graph, len(templates))}
	for _, t := range templates {
		s.templates[t.Name] = t.Graph
	}
	return s
}

// Put adds or replaces a template.
func (s *MemSource) Put(t Template) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[t.Name] = t.Graph
}

// Names implements Source.
func (s *MemSource) Names(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.templates))
	for n := range s.templates {
		names = append(names, n)
	}
	slices.Sort(names)
	return names, nil
}

// Get implements Source. The returned graph is a copy.
func (s *MemSource) Get(_ context.Context, name string) (Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.templates[name]
	if !ok {
		return Template{}, fmt.Errorf("%q: %w", name, ErrTemplateNotFound)
	}
	return Template{Name: name, Graph: g.Clone()}, nil
}

var (
	_ Source = (*MemSource)(nil)
	_ Source = (*DirSource)(nil)
	_ Source = (*MongoSource)(nil)
)
