package adapt

import (
	"fmt"

	"github.com/matzehuels/schemadapt/pkg/adjacency"
	"github.com/matzehuels/schemadapt/pkg/bpc"
	"github.com/matzehuels/schemadapt/pkg/correspondence"
	"github.com/matzehuels/schemadapt/pkg/editscript"
)

// networkPrefix names networks created during adaptation.
const networkPrefix = "net~"

// applier replays one round's script on the working graph while keeping a
// mirror matrix in step, so that every operation can be checked against the
// nodes it names.
type applier struct {
	graph  *bpc.Graph
	target *bpc.Graph
	mirror *adjacency.Matrix

	// nodes maps matrix node IDs to current graph node IDs. Created nodes
	// carry synthetic IDs in the matrix and real IDs in the graph, and moved
	// pins change their graph ID.
	nodes map[string]string

	// boxes maps target box IDs to the working boxes standing for them.
	boxes map[string]string

	// targets maps current graph pin node IDs to the target pins they stand
	// for. Network splits and merges are decided by target network.
	targets map[string]string

	// splits remembers the network a disconnect moved a pin to when neither
	// pin has a target, keyed by the pin it was disconnected from.
	splits map[string]string
}

func newApplier(g, target *bpc.Graph, src *adjacency.Matrix, corr correspondence.Result) *applier {
	a := &applier{
		graph:   g,
		target:  target,
		mirror:  src.Clone(),
		nodes:   make(map[string]string, src.Size()),
		boxes:   corr.Boxes.Inverse(),
		targets: corr.Pins(),
		splits:  make(map[string]string),
	}
	for _, id := range src.IDs() {
		a.nodes[id] = id
	}
	return a
}

func (a *applier) apply(op editscript.Operation) error {
	var err error
	switch o := op.(type) {
	case editscript.DeleteNode:
		err = a.delete(o)
	case editscript.CreateNode:
		err = a.create(o)
	case editscript.SwapIndices:
	case editscript.DisconnectNodes:
		err = a.disconnect(a.nodes[o.NodeA], a.nodes[o.NodeB])
	case editscript.ConnectNodes:
		err = a.connect(a.nodes[o.NodeA], a.nodes[o.NodeB])
	default:
		return fmt.Errorf("%s: %w", op, editscript.ErrUnknownOperation)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return op.Apply(a.mirror)
}

// order returns the graph node IDs in mirror order.
func (a *applier) order() []string {
	ids := a.mirror.IDs()
	for i, id := range ids {
		ids[i] = a.nodes[id]
	}
	return ids
}

func (a *applier) delete(o editscript.DeleteNode) error {
	id := a.nodes[o.NodeID]
	if !bpc.IsPinNode(id) {
		if _, ok := a.graph.Box(id); !ok {
			return nil
		}
		return a.graph.RemoveBox(id)
	}
	p, ok := a.graph.PinByNodeID(id)
	if !ok {
		// Already removed together with its box.
		return nil
	}
	return a.graph.RemovePin(p.BoxID, p.ID)
}

func (a *applier) create(o editscript.CreateNode) error {
	if !bpc.IsPinNode(o.TargetID) {
		tb, ok := a.target.Box(o.TargetID)
		if !ok {
			return fmt.Errorf("target box %q: %w", o.TargetID, bpc.ErrUnknownBox)
		}
		id := a.graph.FreshBoxID(tb.ID)
		if err := a.graph.AddBox(bpc.Box{ID: id, Placement: bpc.Floating, Attrs: tb.Attrs}); err != nil {
			return err
		}
		a.nodes[o.NodeID] = id
		a.boxes[tb.ID] = id
		return nil
	}

	tp, ok := a.target.PinByNodeID(o.TargetID)
	if !ok {
		return fmt.Errorf("target pin %q: %w", o.TargetID, bpc.ErrUnknownPin)
	}
	owner, ok := a.boxes[tp.BoxID]
	if !ok {
		return fmt.Errorf("no working box for target box %q: %w", tp.BoxID, bpc.ErrUnknownBox)
	}
	p := bpc.Pin{
		BoxID:     owner,
		ID:        a.graph.FreshPinID(owner, tp.ID),
		Offset:    tp.Offset,
		Color:     tp.Color,
		NetworkID: a.graph.FreshNetworkID(networkPrefix),
	}
	if err := a.graph.AddPin(p); err != nil {
		return err
	}
	a.nodes[o.NodeID] = p.NodeID()
	a.targets[p.NodeID()] = o.TargetID
	return nil
}

func (a *applier) connect(x, y string) error {
	switch {
	case bpc.IsPinNode(x) && bpc.IsPinNode(y):
		return a.join(x, y)
	case bpc.IsPinNode(x):
		return a.adopt(y, x)
	case bpc.IsPinNode(y):
		return a.adopt(x, y)
	}
	return nil
}

// join puts two pins of different boxes on one network. Each side first
// sheds the pins bound for other target networks, so merging only brings
// together pins the target connects.
func (a *applier) join(x, y string) error {
	for _, id := range []string{x, y} {
		p, ok := a.graph.PinByNodeID(id)
		if !ok || p.NetworkID == "" {
			continue
		}
		if key, ok := a.targetKey(id); ok {
			if err := a.regroup(p.NetworkID, key); err != nil {
				return err
			}
		}
	}

	px, okx := a.graph.PinByNodeID(x)
	py, oky := a.graph.PinByNodeID(y)
	if !okx || !oky || px.BoxID == py.BoxID {
		return nil
	}
	switch {
	case px.NetworkID == py.NetworkID && px.NetworkID != "":
		return nil
	case px.NetworkID == "" && py.NetworkID == "":
		net := a.graph.FreshNetworkID(networkPrefix)
		if err := a.graph.SetNetwork(px.BoxID, px.ID, net); err != nil {
			return err
		}
		return a.graph.SetNetwork(py.BoxID, py.ID, net)
	case py.NetworkID == "":
		return a.graph.SetNetwork(py.BoxID, py.ID, px.NetworkID)
	case px.NetworkID == "":
		return a.graph.SetNetwork(px.BoxID, px.ID, py.NetworkID)
	}
	a.graph.MergeNetworks(px.NetworkID, py.NetworkID)
	return nil
}

// adopt moves pin into box unless it already belongs there.
func (a *applier) adopt(box, pin string) error {
	p, ok := a.graph.PinByNodeID(pin)
	if !ok || p.BoxID == box {
		return nil
	}
	if _, ok := a.graph.Box(box); !ok {
		return nil
	}
	newID, err := a.graph.MovePin(p.BoxID, p.ID, box)
	if err != nil {
		return err
	}
	moved := bpc.PinNodeID(box, newID)
	for k, v := range a.nodes {
		if v == pin {
			a.nodes[k] = moved
		}
	}
	if tid, ok := a.targets[pin]; ok {
		delete(a.targets, pin)
		a.targets[moved] = tid
	}
	return nil
}

// disconnect separates two pins sharing a network. When both have targets,
// the whole network is regrouped by target network, so pins that belong
// with y leave together and no pair the script keeps is cut. Otherwise only
// y moves.
func (a *applier) disconnect(x, y string) error {
	if !bpc.IsPinNode(x) || !bpc.IsPinNode(y) {
		return nil
	}
	px, okx := a.graph.PinByNodeID(x)
	py, oky := a.graph.PinByNodeID(y)
	if !okx || !oky || px.NetworkID == "" || px.NetworkID != py.NetworkID {
		return nil
	}
	kx, okx := a.targetKey(x)
	ky, oky := a.targetKey(y)
	if okx && oky && kx != ky {
		return a.regroup(px.NetworkID, kx)
	}
	net, ok := a.splits[x]
	if !ok {
		net = a.graph.FreshNetworkID(networkPrefix)
		a.splits[x] = net
	}
	return a.graph.SetNetwork(py.BoxID, py.ID, net)
}

// targetKey names the target network a working pin belongs on. Target pins
// without a network get a key of their own. Pins with no target report false.
func (a *applier) targetKey(pin string) (string, bool) {
	tid, ok := a.targets[pin]
	if !ok {
		return "", false
	}
	tp, ok := a.target.PinByNodeID(tid)
	if !ok {
		return "", false
	}
	if tp.NetworkID == "" {
		return "\x00" + tid, true
	}
	return tp.NetworkID, true
}

// regroup splits network net by target network. Pins keyed like anchor and
// pins without a target stay; every other key moves to a fresh network.
func (a *applier) regroup(net, anchor string) error {
	fresh := make(map[string]string)
	for _, p := range a.graph.NetworkPins(net) {
		key, ok := a.targetKey(p.NodeID())
		if !ok || key == anchor {
			continue
		}
		id, seen := fresh[key]
		if !seen {
			id = a.graph.FreshNetworkID(networkPrefix)
			fresh[key] = id
		}
		if err := a.graph.SetNetwork(p.BoxID, p.ID, id); err != nil {
			return err
		}
	}
	return nil
}
