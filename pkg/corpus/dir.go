package corpus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	errs "github.com/matzehuels/schemadapt/pkg/errors"
	"github.com/matzehuels/schemadapt/pkg/graph"
)

const templateExt = ".json"

// DirSource reads templates from <dir>/<name>.json.
type DirSource struct {
	dir string
}

// NewDirSource creates a source over dir. The directory must exist.
func NewDirSource(dir string) (*DirSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", dir)
	}
	return &DirSource{dir: dir}, nil
}

// Dir returns the corpus directory.
func (s *DirSource) Dir() string { return s.dir }

// Names returns the stems of the JSON files in the directory.
func (s *DirSource) Names(context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != templateExt {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), templateExt))
	}
	slices.Sort(names)
	return names, nil
}

// Get reads and validates one template file.
func (s *DirSource) Get(ctx context.Context, name string) (Template, error) {
	if err := errs.ValidateTemplateName(name); err != nil {
		return Template{}, err
	}
	if err := ctx.Err(); err != nil {
		return Template{}, err
	}
	path := filepath.Join(s.dir, name+templateExt)
	g, err := graph.ReadGraphFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Template{}, fmt.Errorf("%q: %w", name, ErrTemplateNotFound)
	}
	if err != nil {
		return Template{}, err
	}
	return Template{Name: name, Graph: g}, nil
}

// Put writes a template file, replacing any existing one.
func (s *DirSource) Put(_ context.Context, t Template) error {
	if err := errs.ValidateTemplateName(t.Name); err != nil {
		return err
	}
	return graph.WriteGraphFile(t.Graph, filepath.Join(s.dir, t.Name+templateExt))
}
