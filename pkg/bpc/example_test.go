package bpc_test

import (
	"fmt"

	"github.com/matzehuels/schemadapt/pkg/bpc"
)

func ExampleGraph() {
	// Two resistors in series: R1.2 and R2.1 share the "mid" network.
	g := bpc.New()
	_ = g.AddBox(bpc.Box{ID: "R1"})
	_ = g.AddBox(bpc.Box{ID: "R2"})
	_ = g.AddPin(bpc.Pin{BoxID: "R1", ID: "1", NetworkID: "vin", Color: bpc.ColorPower})
	_ = g.AddPin(bpc.Pin{BoxID: "R1", ID: "2", NetworkID: "mid", Color: bpc.ColorSignal})
	_ = g.AddPin(bpc.Pin{BoxID: "R2", ID: "1", NetworkID: "mid", Color: bpc.ColorSignal})

	fmt.Println("Nodes:", g.NodeIDs())
	fmt.Println("Networks:", g.Networks())
	fmt.Println("Valid:", g.Validate() == nil)
	// Output:
	// Nodes: [R1 R2 R1/1 R1/2 R2/1]
	// Networks: [vin mid]
	// Valid: true
}
