package corpus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/schemadapt/pkg/bpc"
	errs "github.com/matzehuels/schemadapt/pkg/errors"
	"github.com/matzehuels/schemadapt/pkg/graph"
)

// series builds n two-pin boxes R1..Rn wired in series.
func series(t *testing.T, n int) *bpc.Graph {
	t.Helper()
	g := bpc.New()
	for i := 1; i <= n; i++ {
		box := fmt.Sprintf("R%d", i)
		require.NoError(t, g.AddBox(bpc.Box{ID: box, Placement: bpc.Fixed}))
		require.NoError(t, g.AddPin(bpc.Pin{BoxID: box, ID: "1", NetworkID: fmt.Sprintf("n%d", i-1)}))
		require.NoError(t, g.AddPin(bpc.Pin{BoxID: box, ID: "2", NetworkID: fmt.Sprintf("n%d", i)}))
	}
	return g
}

func TestMemSource(t *testing.T) {
	ctx := context.Background()
	src := NewMemSource(Template{Name: "b", Graph: series(t, 2)}, Template{Name: "a", Graph: series(t, 1)})

	names, err := src.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	tpl, err := src.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 2, tpl.Graph.BoxCount())

	require.NoError(t, tpl.Graph.RemoveBox("R1"))
	again, _ := src.Get(ctx, "b")
	assert.Equal(t, 2, again.Graph.BoxCount(), "Get must return a copy")

	_, err = src.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestDirSource(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, graph.WriteGraphFile(series(t, 3), filepath.Join(dir, "three.json")))
	require.NoError(t, graph.WriteGraphFile(series(t, 1), filepath.Join(dir, "one.json")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

	src, err := NewDirSource(dir)
	require.NoError(t, err)

	names, err := src.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "three"}, names)

	tpl, err := src.Get(ctx, "three")
	require.NoError(t, err)
	assert.Equal(t, "three", tpl.Name)
	assert.Equal(t, 3, tpl.Graph.BoxCount())
	assert.Equal(t, 6, tpl.Graph.PinCount())

	_, err = src.Get(ctx, "absent")
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	_, err = src.Get(ctx, "../etc/passwd")
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidName), "got %v", err)
}

func TestDirSourcePut(t *testing.T) {
	ctx := context.Background()
	src, err := NewDirSource(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, src.Put(ctx, Template{Name: "pair", Graph: series(t, 2)}))
	tpl, err := src.Get(ctx, "pair")
	require.NoError(t, err)
	assert.Equal(t, 2, tpl.Graph.BoxCount())

	assert.Error(t, src.Put(ctx, Template{Name: "a/b", Graph: series(t, 1)}))
}

func TestNewDirSourceErrors(t *testing.T) {
	_, err := NewDirSource(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "f.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o644))
	_, err = NewDirSource(file)
	assert.Error(t, err)
}

func TestLoadAll(t *testing.T) {
	ctx := context.Background()
	var tpls []Template
	for i := 1; i <= 12; i++ {
		tpls = append(tpls, Template{Name: fmt.Sprintf("t%02d", i), Graph: series(t, i%4+1)})
	}
	got, err := LoadAll(ctx, NewMemSource(tpls...), 3)
	require.NoError(t, err)
	require.Len(t, got, 12)
	for i, tpl := range got {
		assert.Equal(t, tpls[i].Name, tpl.Name)
		assert.Equal(t, tpls[i].Graph.BoxCount(), tpl.Graph.BoxCount())
	}
}

type failingSource struct{ *MemSource }

func (failingSource) Get(context.Context, string) (Template, error) {
	return Template{}, errors.New("disk on fire")
}

func TestLoadAllPropagatesErrors(t *testing.T) {
	src := failingSource{NewMemSource(Template{Name: "a", Graph: series(t, 1)})}
	_, err := LoadAll(context.Background(), src, 0)
	assert.ErrorContains(t, err, "disk on fire")
}

// TestMongoSource runs against a live server when SCHEMADAPT_TEST_MONGO is set
// (e.g. mongodb://localhost:27017).
func TestMongoSource(t *testing.T) {
	uri := os.Getenv("SCHEMADAPT_TEST_MONGO")
	if uri == "" {
		t.Skip("SCHEMADAPT_TEST_MONGO not set")
	}
	ctx := context.Background()
	coll := fmt.Sprintf("templates_test_%d", os.Getpid())
	src, err := NewMongoSource(ctx, uri, "schemadapt_test", coll)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = src.coll.Drop(ctx)
		_ = src.Close(ctx)
	})

	require.NoError(t, src.Put(ctx, Template{Name: "two", Graph: series(t, 2)}))
	require.NoError(t, src.Put(ctx, Template{Name: "one", Graph: series(t, 1)}))

	names, err := src.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, names)

	tpl, err := src.Get(ctx, "two")
	require.NoError(t, err)
	assert.Equal(t, 4, tpl.Graph.PinCount())

	_, err = src.Get(ctx, "three")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}
