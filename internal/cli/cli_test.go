package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/schemadapt/pkg/bpc"
	"github.com/matzehuels/schemadapt/pkg/corpus"
	"github.com/matzehuels/schemadapt/pkg/editscript"
	errs "github.com/matzehuels/schemadapt/pkg/errors"
	"github.com/matzehuels/schemadapt/pkg/graph"
)

func series(t *testing.T, n int) *bpc.Graph {
	t.Helper()
	g := bpc.New()
	for i := 1; i <= n; i++ {
		box := fmt.Sprintf("R%d", i)
		if err := g.AddBox(bpc.Box{ID: box, Placement: bpc.Fixed}); err != nil {
			t.Fatal(err)
		}
		for p := 1; p <= 2; p++ {
			if err := g.AddPin(bpc.Pin{BoxID: box, ID: fmt.Sprint(p), NetworkID: fmt.Sprintf("n%d", i+p-2)}); err != nil {
				t.Fatal(err)
			}
		}
	}
	return g
}

func writeSeries(t *testing.T, dir, name string, n int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := graph.WriteGraphFile(series(t, n), path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRootCommandSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"adapt", "rank", "diff", "distance", "render", "corpus", "serve", "cache", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing subcommand %q (have %v)", want, names)
		}
	}
	for _, flag := range []string{"cache-url", "no-cache"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag --%s", flag)
		}
	}
}

func TestFlagValueCompletions(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	tests := []struct {
		cmd, flag string
		want      []string
	}{
		{"adapt", "policy", []string{"chain", "majority", "histogram"}},
		{"rank", "policy", []string{"chain", "majority", "histogram"}},
		{"render", "format", []string{"dot", "svg", "png"}},
	}
	for _, tt := range tests {
		t.Run(tt.cmd+"/"+tt.flag, func(t *testing.T) {
			cmd, _, err := root.Find([]string{tt.cmd})
			if err != nil {
				t.Fatal(err)
			}
			fn, ok := cmd.GetFlagCompletionFunc(tt.flag)
			if !ok {
				t.Fatalf("no completion for --%s", tt.flag)
			}
			got, _ := fn(cmd, nil, "")
			if !slices.Equal(got, tt.want) {
				t.Errorf("completions = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompletionCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"completion", "bash"})
	if err := root.Execute(); err != nil {
		t.Fatalf("completion bash: %v", err)
	}
	if !strings.Contains(buf.String(), "schemadapt") {
		t.Error("bash script does not mention schemadapt")
	}

	root.SetArgs([]string{"completion", "tcsh"})
	root.SetErr(io.Discard)
	if err := root.Execute(); err == nil {
		t.Error("unsupported shell should fail")
	}
}

func TestLoadGraph(t *testing.T) {
	dir := t.TempDir()
	good := writeSeries(t, dir, "good.json", 2)
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"boxes": [`), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		code errs.Code
	}{
		{"ok", good, ""},
		{"missing", filepath.Join(dir, "nope.json"), errs.ErrCodeFileNotFound},
		{"malformed", bad, errs.ErrCodeInvalidGraph},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := loadGraph(tt.path)
			if tt.code == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if g.BoxCount() != 2 {
					t.Errorf("BoxCount = %d, want 2", g.BoxCount())
				}
				return
			}
			if got := errs.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err: %v)", got, tt.code, err)
			}
		})
	}
}

func TestLoadCosts(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "costs.toml")
	if err := os.WriteFile(valid, []byte("base_operation_cost = 2.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	negative := filepath.Join(dir, "negative.toml")
	if err := os.WriteFile(negative, []byte("base_operation_cost = -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadCosts("")
	if err != nil || cfg == nil {
		t.Fatalf("loadCosts(\"\") = %v, %v", cfg, err)
	}

	cfg, err = loadCosts(valid)
	if err != nil {
		t.Fatalf("loadCosts(valid): %v", err)
	}
	if cfg.BaseOperationCost != 2.5 {
		t.Errorf("BaseOperationCost = %v, want 2.5", cfg.BaseOperationCost)
	}

	if _, err := loadCosts(filepath.Join(dir, "nope.toml")); errs.GetCode(err) != errs.ErrCodeFileNotFound {
		t.Errorf("missing file: got %v", err)
	}
	if _, err := loadCosts(negative); errs.GetCode(err) != errs.ErrCodeInvalidCostConfig {
		t.Errorf("negative cost: got %v", err)
	}
}

func TestOptionFlags(t *testing.T) {
	var f optionFlags
	opts, err := f.options(nil)
	if err != nil {
		t.Fatalf("default options: %v", err)
	}
	if opts.Costs == nil {
		t.Error("Costs not set")
	}

	f.opts.Policy = "vote"
	if _, err := f.options(nil); errs.GetCode(err) != errs.ErrCodeInvalidOptions {
		t.Errorf("bad policy: got %v", err)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"png", []string{"png"}},
		{"dot,svg", []string{"dot", "svg"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if err := validateFormats([]string{"svg", "png", "dot"}); err != nil {
		t.Errorf("valid formats rejected: %v", err)
	}
	if err := validateFormats([]string{"pdf"}); errs.GetCode(err) != errs.ErrCodeInvalidOptions {
		t.Errorf("pdf: got %v", err)
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "amp.json", "amp"},
		{"", "dir/amp.adapted.json", "dir/amp.adapted"},
		{"out.svg", "amp.json", "out"},
		{"out.png", "amp.json", "out"},
		{"out", "amp.json", "out"},
		{"out.v2", "amp.json", "out.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestTouchedNodes(t *testing.T) {
	g := series(t, 2)
	ops := []editscript.Operation{
		editscript.DeleteNode{Index: 3, NodeID: "R2"},
		editscript.CreateNode{NewRowAndColumnIndex: 4, NodeID: "new", TargetID: "R3"},
		editscript.ConnectNodes{I: 0, J: 1, NodeA: "R1", NodeB: "missing"},
	}
	got := touchedNodes(g, ops)
	if !slices.Equal(got, []string{"R1", "R2"}) {
		t.Errorf("touchedNodes = %v, want [R1 R2]", got)
	}
}

func TestRunImport(t *testing.T) {
	in := t.TempDir()
	a := writeSeries(t, in, "amp.json", 2)
	b := writeSeries(t, in, "filter.json", 3)

	dst, err := corpus.NewDirSource(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := New(io.Discard, LogInfo)
	ctx := context.Background()

	if err := c.runImport(ctx, dst, []string{a, b}, ""); err != nil {
		t.Fatalf("runImport: %v", err)
	}
	names, err := dst.Names(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(names, []string{"amp", "filter"}) {
		t.Errorf("names = %v, want [amp filter]", names)
	}

	if err := c.runImport(ctx, dst, []string{a}, "../escape"); errs.GetCode(err) != errs.ErrCodeInvalidName {
		t.Errorf("bad name: got %v", err)
	}
}
