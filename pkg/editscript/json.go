package editscript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// MarshalScript encodes ops as a JSON array. Each element carries an "op"
// field naming its [Kind].
func MarshalScript(ops []Operation) ([]byte, error) {
	if ops == nil {
		ops = []Operation{}
	}
	return json.MarshalIndent(ops, "", "  ")
}

// UnmarshalScript decodes a script produced by [MarshalScript].
func UnmarshalScript(data []byte) ([]Operation, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	ops := make([]Operation, 0, len(raw))
	for i, r := range raw {
		op, err := decodeOp(r)
		if err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// WriteScript writes ops to w in the human-readable form used by the CLI:
// one operation per line, numbered from 1.
func WriteScript(w io.Writer, ops []Operation) error {
	var buf bytes.Buffer
	width := len(strconv.Itoa(len(ops)))
	for i, op := range ops {
		fmt.Fprintf(&buf, "%*d  %s\n", width, i+1, op)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func decodeOp(r json.RawMessage) (Operation, error) {
	var head struct {
		Op Kind `json:"op"`
	}
	if err := json.Unmarshal(r, &head); err != nil {
		return nil, err
	}
	switch head.Op {
	case KindDeleteNode:
		var o DeleteNode
		err := json.Unmarshal(r, &o)
		return o, err
	case KindCreateNode:
		var o CreateNode
		err := json.Unmarshal(r, &o)
		return o, err
	case KindSwapIndices:
		var o SwapIndices
		err := json.Unmarshal(r, &o)
		return o, err
	case KindDisconnectNodes:
		var o DisconnectNodes
		err := json.Unmarshal(r, &o)
		return o, err
	case KindConnectNodes:
		var o ConnectNodes
		err := json.Unmarshal(r, &o)
		return o, err
	}
	return nil, fmt.Errorf("%q: %w", head.Op, ErrUnknownOperation)
}

func (o DeleteNode) MarshalJSON() ([]byte, error) {
	type plain DeleteNode
	return json.Marshal(struct {
		Op Kind `json:"op"`
		plain
	}{o.Kind(), plain(o)})
}

func (o CreateNode) MarshalJSON() ([]byte, error) {
	type plain CreateNode
	return json.Marshal(struct {
		Op Kind `json:"op"`
		plain
	}{o.Kind(), plain(o)})
}

func (o SwapIndices) MarshalJSON() ([]byte, error) {
	type plain SwapIndices
	return json.Marshal(struct {
		Op Kind `json:"op"`
		plain
	}{o.Kind(), plain(o)})
}

func (o DisconnectNodes) MarshalJSON() ([]byte, error) {
	type plain DisconnectNodes
	return json.Marshal(struct {
		Op Kind `json:"op"`
		plain
	}{o.Kind(), plain(o)})
}

func (o ConnectNodes) MarshalJSON() ([]byte, error) {
	type plain ConnectNodes
	return json.Marshal(struct {
		Op Kind `json:"op"`
		plain
	}{o.Kind(), plain(o)})
}
