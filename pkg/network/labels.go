package network

import (
	"strconv"
	"strings"
)

// Default label templates. NAME expands to the node's names and WEIGHT to
// the node frequency or edge mutation count.
const (
	DefaultNodeTemplate = "NAME"
	DefaultEdgeTemplate = "(WEIGHT)"
)

// NodeLabel expands tmpl for node.
func NodeLabel(tmpl string, node *Node) string {
	r := strings.NewReplacer(
		"NAME", strings.Join(node.Names, ", "),
		"WEIGHT", formatWeight(node.Weight),
	)
	return r.Replace(tmpl)
}

// EdgeLabel expands tmpl for edge.
func EdgeLabel(tmpl string, e *Edge) string {
	return strings.ReplaceAll(tmpl, "WEIGHT", strconv.Itoa(e.Weight))
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
