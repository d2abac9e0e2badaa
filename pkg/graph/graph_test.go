package graph

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/schemadapt/pkg/bpc"
)

func sample(t *testing.T) *bpc.Graph {
	t.Helper()
	g := bpc.New()
	for _, b := range []bpc.Box{
		{ID: "R1", Placement: bpc.Fixed, Center: r2.Vec{X: 1, Y: 2}, Attrs: map[string]string{"value": "10k"}},
		{ID: "GND", Attrs: map[string]string{bpc.AttrNetLabel: "true"}},
	} {
		if err := g.AddBox(b); err != nil {
			t.Fatal(err)
		}
	}
	for _, p := range []bpc.Pin{
		{BoxID: "R1", ID: "1", NetworkID: "vin", Color: bpc.ColorSignal, Offset: r2.Vec{Y: -5}},
		{BoxID: "R1", ID: "2", NetworkID: "gnd", Color: bpc.ColorGround, Offset: r2.Vec{Y: 5}},
		{BoxID: "GND", ID: "1", NetworkID: "gnd", Color: bpc.ColorNetLabel},
	} {
		if err := g.AddPin(p); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestRoundTrip(t *testing.T) {
	g := sample(t)
	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}
	back, err := ReadGraph(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}

	if got, want := back.NodeIDs(), g.NodeIDs(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("NodeIDs = %v, want %v", got, want)
	}
	b, _ := back.Box("R1")
	if !b.IsFixed() || b.Center != (r2.Vec{X: 1, Y: 2}) || b.Attrs["value"] != "10k" {
		t.Errorf("R1 = %+v, want fixed at (1,2) with value 10k", b)
	}
	gnd, _ := back.Box("GND")
	if gnd.IsFixed() || !gnd.IsNetLabel() {
		t.Errorf("GND = %+v, want floating net label", gnd)
	}
	p, _ := back.Pin("R1", "1")
	if p.Offset != (r2.Vec{Y: -5}) || p.Color != bpc.ColorSignal || p.NetworkID != "vin" {
		t.Errorf("R1/1 = %+v", p)
	}

	again, _ := MarshalGraph(back)
	if !bytes.Equal(data, again) {
		t.Errorf("second round trip differs:\n%s\nvs\n%s", data, again)
	}
}

func TestMarshalGraph_Empty(t *testing.T) {
	data, err := MarshalGraph(bpc.New())
	if err != nil {
		t.Fatal(err)
	}
	doc, err := UnmarshalGraph(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Boxes) != 0 || len(doc.Pins) != 0 {
		t.Errorf("doc = %+v, want empty", doc)
	}
	if !bytes.Contains(data, []byte(`"boxes": []`)) {
		t.Errorf("empty graph should encode empty arrays, got %s", data)
	}
}

func TestReadGraph_Errors(t *testing.T) {
	tests := []struct {
		name string
		json string
		want error
	}{
		{"unknown box", `{"boxes":[],"pins":[{"box":"X","id":"1"}]}`, bpc.ErrUnknownBox},
		{"duplicate box", `{"boxes":[{"id":"A"},{"id":"A"}],"pins":[]}`, bpc.ErrDuplicateBox},
		{"duplicate pin", `{"boxes":[{"id":"A"}],"pins":[{"box":"A","id":"1"},{"box":"A","id":"1"}]}`, bpc.ErrDuplicatePin},
		{"separator in id", `{"boxes":[{"id":"A/B"}],"pins":[]}`, bpc.ErrInvalidID},
		{"unknown placement", `{"boxes":[{"id":"A","placement":"pinned"}],"pins":[]}`, bpc.ErrInvalidPlacement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadGraph(strings.NewReader(tt.json))
			if !errors.Is(err, tt.want) {
				t.Errorf("ReadGraph err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := ReadGraph(strings.NewReader("{")); err == nil {
		t.Error("malformed JSON should fail")
	}
}

func TestGraphFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g.json")
	if err := WriteGraphFile(sample(t), path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
	g, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if g.PinCount() != 3 {
		t.Errorf("PinCount = %d, want 3", g.PinCount())
	}
	if _, err := ReadGraphFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestValidate(t *testing.T) {
	doc := Graph{Name: "bad", Boxes: []Box{{ID: "A"}}, Pins: []Pin{{Box: "B", ID: "1"}}}
	if err := doc.Validate(); !errors.Is(err, bpc.ErrUnknownBox) {
		t.Errorf("Validate = %v, want ErrUnknownBox", err)
	}
}
