package network

import (
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is an ordered list of group colors. Default fills nodes and
// wedges that belong to no group.
type Palette struct {
	Name    string
	Colors  []string
	Default string
}

// Color returns the color for the i-th group. Past the end of the list,
// hues are generated by golden-angle rotation so that colors stay distinct.
func (p Palette) Color(i int) string {
	if i >= 0 && i < len(p.Colors) {
		return p.Colors[i]
	}
	if i < 0 {
		return p.Default
	}
	hue := math.Mod(float64(i-len(p.Colors))*goldenAngle, 360)
	return colorful.Hcl(hue, 0.45, 0.75).Clamped().Hex()
}

const goldenAngle = 137.50776405003785

// DefaultPalette is used when no palette is configured.
const DefaultPalette = "spring"

var palettes = map[string]Palette{
	"spring": {
		Name: "spring",
		Colors: []string{
			"#fd7f6f", "#7eb0d5", "#b2e061", "#bd7ebe", "#ffb55a",
			"#ffee65", "#beb9db", "#fdcce5", "#8bd3c7",
		},
		Default: "#808080",
	},
	"pastel": {
		Name: "pastel",
		Colors: []string{
			"#fbb4ae", "#b3cde3", "#ccebc5", "#decbe4",
			"#fed9a6", "#ffffcc", "#e5d8bd", "#fddaec",
		},
		Default: "#f2f2f2",
	},
	"set1": {
		Name: "set1",
		Colors: []string{
			"#e41a1c", "#377eb8", "#4daf4a", "#984ea3",
			"#ff7f00", "#ffff33", "#a65628", "#f781bf",
		},
		Default: "#999999",
	},
	"tab10": {
		Name: "tab10",
		Colors: []string{
			"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
			"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
		},
		Default: "#c7c7c7",
	},
	"retrometro": {
		Name: "retrometro",
		Colors: []string{
			"#ea5545", "#f46a9b", "#ef9b20", "#edbf33", "#ede15b",
			"#bdcf32", "#87bc45", "#27aeef", "#b33dc6",
		},
		Default: "#808080",
	},
	"spectrum": {
		Name: "spectrum",
		Colors: []string{
			"#0fb5ae", "#4046ca", "#f68511", "#de3d82", "#7e84fa", "#72e06a",
			"#147af3", "#7326d3", "#e8c600", "#cb5d00", "#008f5d", "#bce931",
		},
		Default: "#808080",
	},
}

// LookupPalette returns the named palette (case-insensitive).
func LookupPalette(name string) (Palette, bool) {
	p, ok := palettes[strings.ToLower(name)]
	return p, ok
}

// PaletteNames returns the names of all built-in palettes, sorted.
func PaletteNames() []string {
	names := make([]string, 0, len(palettes))
	for n := range palettes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
