// Package io reads haplotype network descriptions and writes them back out.
//
// # Formats
//
// Three input formats are supported, all producing a [network.Network]
// through the validating builders of package network:
//
// A rooted tree ([FormatTree]) lists nodes in order, each naming its parent
// and the mutation distance to it:
//
//	{
//	  "nodes": [
//	    {"id": "H1", "weight": 10, "subdivisions": [{"name": "north", "weight": 6}]},
//	    {"id": "H2", "parent": "H1", "mutations": 1, "weight": 5, "members": ["s1", "s2"]}
//	  ]
//	}
//
// A general graph ([FormatGraph]) lists node data and edges separately.
// Edges may name nodes missing from the node list; those become
// zero-weight vertices:
//
//	{
//	  "nodes": [{"id": "H1", "weight": 4}, {"id": "H2", "weight": 1}],
//	  "edges": [{"a": "H1", "b": "H2", "mutations": 2}]
//	}
//
// An edge list ([FormatEdges]) is plain text with one edge per line,
// optionally preceded by node lines carrying weights and subdivisions:
//
//	# comment
//	node H1 10 north=6 south=4
//	node H2 5
//	H1 H2 1
//	H2 H3 2
//
// # Errors
//
// Syntax errors are reported as INVALID_FORMAT and structural problems
// (dangling parents, self-loops, negative weights) as INVALID_INPUT. In
// both cases no network is returned.
//
// # Partitions
//
// [ReadPartition] reads a two-column member→sub-population table for
// [network.Network.ApplyPartition].
package io
