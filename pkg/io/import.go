package io

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/haplonet/pkg/errors"
	"github.com/matzehuels/haplonet/pkg/network"
)

// Format names an input format.
type Format string

// Input formats.
const (
	FormatAuto  Format = ""
	FormatTree  Format = "tree"
	FormatGraph Format = "graph"
	FormatEdges Format = "edges"
)

// Formats lists the concrete input formats.
var Formats = []Format{FormatTree, FormatGraph, FormatEdges}

type treeDoc struct {
	Nodes []treeNode `json:"nodes"`
}

type treeNode struct {
	ID           string                `json:"id"`
	Parent       string                `json:"parent,omitempty"`
	Mutations    int                   `json:"mutations,omitempty"`
	Weight       float64               `json:"weight"`
	Subdivisions []network.Subdivision `json:"subdivisions,omitempty"`
	Members      []string              `json:"members,omitempty"`
}

type graphDoc struct {
	Nodes []graphNode `json:"nodes"`
	Edges []graphEdge `json:"edges"`
}

type graphNode struct {
	ID           string                `json:"id"`
	Weight       float64               `json:"weight"`
	Subdivisions []network.Subdivision `json:"subdivisions,omitempty"`
	Members      []string              `json:"members,omitempty"`
}

type graphEdge struct {
	A         string `json:"a"`
	B         string `json:"b"`
	Mutations int    `json:"mutations"`
}

// Import reads the file at path. With FormatAuto the format is detected
// from the extension and, for JSON, from the presence of an "edges" array.
func Import(path string, format Format, opts network.Options) (*network.Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if format == FormatAuto {
		format = Detect(path, data)
	}
	n, err := Read(bytes.NewReader(data), format, opts)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	return n, nil
}

// Detect guesses the format of data read from path.
func Detect(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".tsv", ".edges", ".el":
		return FormatEdges
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return FormatEdges
	}
	var probe struct {
		Edges json.RawMessage `json:"edges"`
	}
	if json.Unmarshal(trimmed, &probe) == nil && probe.Edges != nil {
		return FormatGraph
	}
	return FormatTree
}

// Read decodes a description in the given format. FormatAuto is treated as
// FormatTree.
func Read(r io.Reader, format Format, opts network.Options) (*network.Network, error) {
	switch format {
	case FormatAuto, FormatTree:
		return ReadTree(r, opts)
	case FormatGraph:
		return ReadGraph(r, opts)
	case FormatEdges:
		return ReadEdgeList(r, opts)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unknown input format %q", format)
}

// ReadTree decodes a rooted tree description.
func ReadTree(r io.Reader, opts network.Options) (*network.Network, error) {
	var doc treeDoc
	if err := decode(r, &doc); err != nil {
		return nil, err
	}
	entries := make([]network.TreeEntry, len(doc.Nodes))
	for i, n := range doc.Nodes {
		entries[i] = network.TreeEntry{
			ID:           n.ID,
			Parent:       n.Parent,
			Mutations:    n.Mutations,
			Weight:       n.Weight,
			Subdivisions: n.Subdivisions,
			Members:      n.Members,
		}
	}
	return network.BuildFromTree(entries, opts)
}

// ReadGraph decodes a general graph description.
func ReadGraph(r io.Reader, opts network.Options) (*network.Network, error) {
	var doc graphDoc
	if err := decode(r, &doc); err != nil {
		return nil, err
	}
	nodes := make([]network.GraphNode, len(doc.Nodes))
	for i, n := range doc.Nodes {
		nodes[i] = network.GraphNode{ID: n.ID, Weight: n.Weight, Subdivisions: n.Subdivisions, Members: n.Members}
	}
	edges := make([]network.GraphEdge, len(doc.Edges))
	for i, e := range doc.Edges {
		edges[i] = network.GraphEdge{A: e.A, B: e.B, Mutations: e.Mutations}
	}
	return network.BuildFromGraph(nodes, edges, opts)
}

func decode(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode")
	}
	return nil
}

// ReadEdgeList decodes the plain-text edge list format. Blank lines and
// lines starting with '#' are ignored. A line "node ID WEIGHT [NAME=W ...]"
// declares node data; any other line is "A B [MUTATIONS]" with a default
// distance of 1.
func ReadEdgeList(r io.Reader, opts network.Options) (*network.Network, error) {
	var nodes []network.GraphNode
	var edges []network.GraphEdge

	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || text[0] == '#' {
			continue
		}
		fields := strings.Fields(text)
		if fields[0] == "node" {
			n, err := parseNodeLine(fields[1:])
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d", line)
			}
			nodes = append(nodes, n)
			continue
		}
		e, err := parseEdgeLine(fields)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d", line)
		}
		edges = append(edges, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return network.BuildFromGraph(nodes, edges, opts)
}

func parseNodeLine(fields []string) (network.GraphNode, error) {
	if len(fields) < 2 {
		return network.GraphNode{}, fmt.Errorf("node line needs an id and a weight")
	}
	w, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return network.GraphNode{}, fmt.Errorf("weight %q: %w", fields[1], err)
	}
	n := network.GraphNode{ID: fields[0], Weight: w}
	for _, f := range fields[2:] {
		name, value, ok := strings.Cut(f, "=")
		if !ok || name == "" {
			return network.GraphNode{}, fmt.Errorf("subdivision %q is not NAME=WEIGHT", f)
		}
		sw, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return network.GraphNode{}, fmt.Errorf("subdivision %q: %w", f, err)
		}
		n.Subdivisions = append(n.Subdivisions, network.Subdivision{Name: name, Weight: sw})
	}
	return n, nil
}

func parseEdgeLine(fields []string) (network.GraphEdge, error) {
	switch len(fields) {
	case 2:
		return network.GraphEdge{A: fields[0], B: fields[1], Mutations: 1}, nil
	case 3:
		m, err := strconv.Atoi(fields[2])
		if err != nil {
			return network.GraphEdge{}, fmt.Errorf("distance %q: %w", fields[2], err)
		}
		return network.GraphEdge{A: fields[0], B: fields[1], Mutations: m}, nil
	}
	return network.GraphEdge{}, fmt.Errorf("edge line needs 2 or 3 fields, got %d", len(fields))
}

// ReadPartition reads "member subpopulation" pairs, one per line,
// separated by a tab, a comma or spaces. Lines starting with '#' are
// ignored.
func ReadPartition(r io.Reader) (map[string]string, error) {
	out := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || text[0] == '#' {
			continue
		}
		fields := strings.FieldsFunc(text, func(r rune) bool { return r == '\t' || r == ',' || r == ' ' })
		if len(fields) != 2 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: want member and sub-population, got %q", line, text)
		}
		if prev, dup := out[fields[0]]; dup && prev != fields[1] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "line %d: member %q assigned to both %q and %q", line, fields[0], prev, fields[1])
		}
		out[fields[0]] = fields[1]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return out, nil
}

// ImportPartition reads a partition file.
func ImportPartition(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadPartition(f)
}
