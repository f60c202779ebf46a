package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/haplonet/pkg/network"
)

// WriteGraph encodes the structure of n as a graph description that
// [ReadGraph] reads back into the same nodes and edges. Positions, labels,
// groups and sets are not included; use package document for full scenes.
func WriteGraph(n *network.Network, w io.Writer) error {
	out := graphDoc{
		Nodes: make([]graphNode, 0, n.Len()),
		Edges: make([]graphEdge, 0, n.EdgeCount()),
	}
	for _, node := range n.Nodes() {
		out.Nodes = append(out.Nodes, graphNode{
			ID:           node.ID,
			Weight:       node.Weight,
			Subdivisions: node.Subdivisions,
			Members:      node.Members,
		})
	}
	for _, e := range n.Edges() {
		out.Edges = append(out.Edges, graphEdge{A: e.From, B: e.To, Mutations: e.Weight})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportGraph writes the structure of n to a JSON file at path.
func ExportGraph(n *network.Network, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGraph(n, f)
}
