package adapt_test

import (
	"fmt"

	"github.com/matzehuels/schemadapt/pkg/adapt"
	"github.com/matzehuels/schemadapt/pkg/bpc"
	"github.com/matzehuels/schemadapt/pkg/cost"
)

func ExampleTransformer_Solve() {
	// Template: a two-resistor divider.
	template := bpc.New()
	_ = template.AddBox(bpc.Box{ID: "R1", Placement: bpc.Fixed})
	_ = template.AddBox(bpc.Box{ID: "R2", Placement: bpc.Fixed})
	_ = template.AddPin(bpc.Pin{BoxID: "R1", ID: "1", NetworkID: "vin"})
	_ = template.AddPin(bpc.Pin{BoxID: "R1", ID: "2", NetworkID: "mid"})
	_ = template.AddPin(bpc.Pin{BoxID: "R2", ID: "1", NetworkID: "mid"})
	_ = template.AddPin(bpc.Pin{BoxID: "R2", ID: "2", NetworkID: "gnd"})

	// Circuit: a single resistor.
	circuit := bpc.New()
	_ = circuit.AddBox(bpc.Box{ID: "R1"})
	_ = circuit.AddPin(bpc.Pin{BoxID: "R1", ID: "1", NetworkID: "in"})
	_ = circuit.AddPin(bpc.Pin{BoxID: "R1", ID: "2", NetworkID: "out"})

	tr, err := adapt.New(template, circuit, cost.Default())
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	res, err := tr.Solve()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("state:", res.State)
	fmt.Println("iterations:", res.Iterations)
	fmt.Println("boxes:", res.Graph.BoxCount(), "pins:", res.Graph.PinCount())
	fmt.Printf("cost: %.1f\n", res.Cost)
	// Output:
	// state: solved
	// iterations: 1
	// boxes: 1 pins: 2
	// cost: 3.0
}
