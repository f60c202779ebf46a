package document

import (
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/haplonet/pkg/errors"
	"github.com/matzehuels/haplonet/pkg/layout"
	"github.com/matzehuels/haplonet/pkg/network"
	"github.com/matzehuels/haplonet/pkg/scene"
)

// Version is the current document format version.
const Version = 1

// Document is a persisted scene.
type Document struct {
	ID       string    `json:"id" bson:"_id"`
	Version  int       `json:"version" bson:"version"`
	Title    string    `json:"title,omitempty" bson:"title,omitempty"`
	Created  time.Time `json:"created" bson:"created"`
	Modified time.Time `json:"modified" bson:"modified"`

	Settings Settings `json:"settings" bson:"settings"`

	Root   string  `json:"root,omitempty" bson:"root,omitempty"`
	Groups []Group `json:"groups" bson:"groups"`
	Nodes  []Node  `json:"nodes" bson:"nodes"`
	Edges  []Edge  `json:"edges" bson:"edges"`
}

// Settings are the scene and layout settings in effect when saved.
type Settings struct {
	Layout  Layout `json:"layout" bson:"layout"`
	Sizing  Sizing `json:"sizing" bson:"sizing"`
	Palette string `json:"palette" bson:"palette"`

	NodeTemplate string `json:"node_template" bson:"node_template"`
	EdgeTemplate string `json:"edge_template" bson:"edge_template"`
	EdgeStyle    string `json:"edge_style" bson:"edge_style"`
	EdgeCutoff   int    `json:"edge_cutoff" bson:"edge_cutoff"`

	TickSpacing float64 `json:"tick_spacing" bson:"tick_spacing"`
	BarLength   float64 `json:"bar_length" bson:"bar_length"`

	CurvatureSpacing float64 `json:"curvature_spacing" bson:"curvature_spacing"`
	LabelRadius      float64 `json:"label_radius" bson:"label_radius"`
	LabelIterations  int     `json:"label_iterations" bson:"label_iterations"`
	LabelPadding     float64 `json:"label_padding" bson:"label_padding"`
	FontSize         float64 `json:"font_size" bson:"font_size"`
	HideNodeLabels   bool    `json:"hide_node_labels,omitempty" bson:"hide_node_labels,omitempty"`
	HideEdgeLabels   bool    `json:"hide_edge_labels,omitempty" bson:"hide_edge_labels,omitempty"`
	Haploweb         bool    `json:"haploweb,omitempty" bson:"haploweb,omitempty"`
	DragRecursive    bool    `json:"drag_recursive" bson:"drag_recursive"`
	DragRotational   bool    `json:"drag_rotational" bson:"drag_rotational"`
}

// DefaultSettings returns the settings of a scene with the default
// configuration. Decoding starts from them, so keys missing from a stored
// document keep their defaults.
func DefaultSettings() Settings {
	s := settingsFrom(scene.DefaultConfig())
	sz := network.DefaultSizing()
	s.Sizing = Sizing{A: sz.A, B: sz.B, C: sz.C, D: sz.D, E: sz.E, F: sz.F, VertexRadius: sz.VertexRadius}
	return s
}

// Layout mirrors [layout.Config].
type Layout struct {
	Repulsion     float64 `json:"repulsion" bson:"repulsion"`
	Spring        float64 `json:"spring" bson:"spring"`
	Centering     float64 `json:"centering" bson:"centering"`
	EdgeLength    float64 `json:"edge_length" bson:"edge_length"`
	Epsilon       float64 `json:"epsilon" bson:"epsilon"`
	MaxIterations int     `json:"max_iterations" bson:"max_iterations"`
	MaxStep       float64 `json:"max_step" bson:"max_step"`
	MinDistance   float64 `json:"min_distance" bson:"min_distance"`
	Seeding       string  `json:"seeding" bson:"seeding"`
	Seed          int64   `json:"seed" bson:"seed"`
}

// Sizing mirrors [network.Sizing].
type Sizing struct {
	A            float64 `json:"a" bson:"a"`
	B            float64 `json:"b" bson:"b"`
	C            float64 `json:"c" bson:"c"`
	D            float64 `json:"d" bson:"d"`
	E            float64 `json:"e" bson:"e"`
	F            float64 `json:"f" bson:"f"`
	VertexRadius float64 `json:"vertex_radius" bson:"vertex_radius"`
}

// Group is a persisted group.
type Group struct {
	Name    string   `json:"name" bson:"name"`
	Color   string   `json:"color" bson:"color"`
	Subpops []string `json:"subpops,omitempty" bson:"subpops,omitempty"`
}

// Node is a persisted node.
type Node struct {
	ID           string                `json:"id" bson:"id"`
	Names        []string              `json:"names,omitempty" bson:"names,omitempty"`
	Members      []string              `json:"members,omitempty" bson:"members,omitempty"`
	Weight       float64               `json:"weight" bson:"weight"`
	Subdivisions []network.Subdivision `json:"subdivisions,omitempty" bson:"subdivisions,omitempty"`
	X            float64               `json:"x" bson:"x"`
	Y            float64               `json:"y" bson:"y"`
	Label        Label                 `json:"label" bson:"label"`
	Sets         []string              `json:"sets,omitempty" bson:"sets,omitempty"`
	Color        string                `json:"color,omitempty" bson:"color,omitempty"`
}

// Edge is a persisted edge.
type Edge struct {
	ID     int64  `json:"id" bson:"id"`
	From   string `json:"from" bson:"from"`
	To     string `json:"to" bson:"to"`
	Weight int    `json:"weight" bson:"weight"`
	Style  string `json:"style,omitempty" bson:"style,omitempty"`
	Label  Label  `json:"label" bson:"label"`
}

// Label is a persisted label placement.
type Label struct {
	DX       float64 `json:"dx" bson:"dx"`
	DY       float64 `json:"dy" bson:"dy"`
	Rotation float64 `json:"rotation,omitempty" bson:"rotation,omitempty"`
	Moved    bool    `json:"moved,omitempty" bson:"moved,omitempty"`
}

// New captures the controller's network and settings under a fresh ID.
func New(c *scene.Controller, title string) *Document {
	now := time.Now().UTC().Truncate(time.Millisecond)
	d := FromNetwork(c.Network(), c.Config())
	d.ID = uuid.NewString()
	d.Title = title
	d.Created = now
	d.Modified = now
	return d
}

// FromNetwork captures a network and scene settings without assigning an
// ID or timestamps.
func FromNetwork(n *network.Network, cfg scene.Config) *Document {
	cfg = cfg.WithDefaults()
	parts := n.Parts()
	d := &Document{
		Version:  Version,
		Settings: settingsFrom(cfg),
		Root:     parts.Root,
		Groups:   make([]Group, 0, len(parts.Groups)),
		Nodes:    make([]Node, 0, len(parts.Nodes)),
		Edges:    make([]Edge, 0, len(parts.Edges)),
	}
	sz := n.Sizing()
	d.Settings.Sizing = Sizing{A: sz.A, B: sz.B, C: sz.C, D: sz.D, E: sz.E, F: sz.F, VertexRadius: sz.VertexRadius}
	d.Settings.Palette = n.Palette().Name
	for _, g := range parts.Groups {
		d.Groups = append(d.Groups, Group{Name: g.Name, Color: g.Color, Subpops: g.Subpops})
	}
	for _, node := range parts.Nodes {
		d.Nodes = append(d.Nodes, Node{
			ID:           node.ID,
			Names:        node.Names,
			Members:      node.Members,
			Weight:       node.Weight,
			Subdivisions: node.Subdivisions,
			X:            node.Pos.X,
			Y:            node.Pos.Y,
			Label:        labelFrom(node.Label),
			Sets:         node.Sets,
			Color:        node.Color,
		})
	}
	for _, e := range parts.Edges {
		d.Edges = append(d.Edges, Edge{
			ID:     int64(e.ID),
			From:   e.From,
			To:     e.To,
			Weight: e.Weight,
			Style:  string(e.Style),
			Label:  labelFrom(e.Label),
		})
	}
	return d
}

// Update replaces the content of d with the controller's current state,
// keeping its ID, title and creation time.
func (d *Document) Update(c *scene.Controller) {
	next := FromNetwork(c.Network(), c.Config())
	next.ID, next.Title, next.Created = d.ID, d.Title, d.Created
	next.Modified = time.Now().UTC().Truncate(time.Millisecond)
	*d = *next
}

func settingsFrom(cfg scene.Config) Settings {
	l := cfg.Layout
	return Settings{
		Layout: Layout{
			Repulsion:     l.Repulsion,
			Spring:        l.Spring,
			Centering:     l.Centering,
			EdgeLength:    l.EdgeLength,
			Epsilon:       l.Epsilon,
			MaxIterations: l.MaxIterations,
			MaxStep:       l.MaxStep,
			MinDistance:   l.MinDistance,
			Seeding:       string(l.Seeding),
			Seed:          l.Seed,
		},
		NodeTemplate:     cfg.NodeTemplate,
		EdgeTemplate:     cfg.EdgeTemplate,
		EdgeStyle:        string(cfg.EdgeStyle),
		EdgeCutoff:       cfg.EdgeCutoff,
		TickSpacing:      cfg.TickSpacing,
		BarLength:        cfg.BarLength,
		CurvatureSpacing: cfg.CurvatureSpacing,
		LabelRadius:      cfg.LabelRadius,
		LabelIterations:  cfg.LabelIterations,
		LabelPadding:     cfg.LabelPadding,
		FontSize:         cfg.FontSize,
		HideNodeLabels:   cfg.HideNodeLabels,
		HideEdgeLabels:   cfg.HideEdgeLabels,
		Haploweb:         cfg.Haploweb,
		DragRecursive:    cfg.DragRecursive,
		DragRotational:   cfg.DragRotational,
	}
}

func labelFrom(l network.Label) Label {
	return Label{DX: l.Offset.X, DY: l.Offset.Y, Rotation: l.Rotation, Moved: l.Moved}
}

func (l Label) network() network.Label {
	return network.Label{Offset: r2.Vec{X: l.DX, Y: l.DY}, Rotation: l.Rotation, Moved: l.Moved}
}

// SceneConfig returns the scene settings stored in d. Settings a document
// does not carry, such as the history limit, take their defaults.
func (d *Document) SceneConfig() scene.Config {
	s := d.Settings
	cfg := scene.DefaultConfig()
	cfg.Layout = layout.Config{
		Repulsion:     s.Layout.Repulsion,
		Spring:        s.Layout.Spring,
		Centering:     s.Layout.Centering,
		EdgeLength:    s.Layout.EdgeLength,
		Epsilon:       s.Layout.Epsilon,
		MaxIterations: s.Layout.MaxIterations,
		MaxStep:       s.Layout.MaxStep,
		MinDistance:   s.Layout.MinDistance,
		Seeding:       layout.Seeding(s.Layout.Seeding),
		Seed:          s.Layout.Seed,
	}
	cfg.NodeTemplate = s.NodeTemplate
	cfg.EdgeTemplate = s.EdgeTemplate
	cfg.EdgeStyle = network.EdgeStyle(s.EdgeStyle)
	cfg.EdgeCutoff = s.EdgeCutoff
	cfg.TickSpacing = s.TickSpacing
	cfg.BarLength = s.BarLength
	cfg.CurvatureSpacing = s.CurvatureSpacing
	cfg.LabelRadius = s.LabelRadius
	cfg.LabelIterations = s.LabelIterations
	cfg.LabelPadding = s.LabelPadding
	cfg.FontSize = s.FontSize
	cfg.HideNodeLabels = s.HideNodeLabels
	cfg.HideEdgeLabels = s.HideEdgeLabels
	cfg.Haploweb = s.Haploweb
	cfg.DragRecursive = s.DragRecursive
	cfg.DragRotational = s.DragRotational
	return cfg.WithDefaults()
}

// Options returns the network options stored in d.
func (d *Document) Options() network.Options {
	s := d.Settings.Sizing
	return network.Options{
		Sizing:  network.Sizing{A: s.A, B: s.B, C: s.C, D: s.D, E: s.E, F: s.F, VertexRadius: s.VertexRadius},
		Palette: d.Settings.Palette,
	}
}

// Network rebuilds the network stored in d. Errors are INVALID_INPUT.
func (d *Document) Network() (*network.Network, error) {
	if d.Version != Version {
		return nil, errors.New(errors.ErrCodeUnsupported, "document version %d, want %d", d.Version, Version)
	}
	p := network.Parts{Root: d.Root}
	for _, g := range d.Groups {
		p.Groups = append(p.Groups, network.Group{Name: g.Name, Color: g.Color, Subpops: g.Subpops})
	}
	for _, n := range d.Nodes {
		p.Nodes = append(p.Nodes, network.Node{
			ID:           n.ID,
			Names:        n.Names,
			Members:      n.Members,
			Weight:       n.Weight,
			Subdivisions: n.Subdivisions,
			Pos:          r2.Vec{X: n.X, Y: n.Y},
			Label:        n.Label.network(),
			Sets:         n.Sets,
			Color:        n.Color,
		})
	}
	for _, e := range d.Edges {
		p.Edges = append(p.Edges, network.Edge{
			ID:     network.EdgeID(e.ID),
			From:   e.From,
			To:     e.To,
			Weight: e.Weight,
			Style:  network.EdgeStyle(e.Style),
			Label:  e.Label.network(),
		})
	}
	return network.Restore(p, d.Options())
}

// Open rebuilds the network and returns a static controller over it.
func (d *Document) Open() (*scene.Controller, error) {
	n, err := d.Network()
	if err != nil {
		return nil, err
	}
	return scene.New(n, d.SceneConfig())
}
