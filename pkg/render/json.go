package render

import (
	"encoding/json"

	"github.com/matzehuels/haplonet/pkg/errors"
	"github.com/matzehuels/haplonet/pkg/scene"
)

type jsonOutput struct {
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Margin float64     `json:"margin"`
	Title  string      `json:"title,omitempty"`
	State  string      `json:"state"`
	Nodes  []jsonNode  `json:"nodes"`
	Edges  []jsonEdge  `json:"edges"`
	Groups []jsonGroup `json:"groups,omitempty"`
	Web    []jsonLink  `json:"haploweb,omitempty"`
}

type jsonNode struct {
	ID       string      `json:"id"`
	Names    []string    `json:"names,omitempty"`
	Weight   float64     `json:"weight"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Radius   float64     `json:"radius"`
	Vertex   bool        `json:"vertex,omitempty"`
	Fill     string      `json:"fill"`
	Slices   []jsonSlice `json:"slices,omitempty"`
	Sets     []string    `json:"sets,omitempty"`
	Selected bool        `json:"selected,omitempty"`
	Label    *jsonLabel  `json:"label,omitempty"`
}

type jsonSlice struct {
	Name   string  `json:"name,omitempty"`
	Group  string  `json:"group,omitempty"`
	Color  string  `json:"color"`
	Weight float64 `json:"weight"`
	Start  float64 `json:"start"`
	Span   float64 `json:"span"`
}

type jsonEdge struct {
	ID       int64      `json:"id"`
	From     string     `json:"from"`
	To       string     `json:"to"`
	Weight   int        `json:"weight"`
	Style    string     `json:"style"`
	Path     string     `json:"path,omitempty"`
	Hidden   bool       `json:"hidden,omitempty"`
	Overflow bool       `json:"overflow,omitempty"`
	Ticks    []jsonTick `json:"ticks,omitempty"`
	Selected bool       `json:"selected,omitempty"`
	Label    *jsonLabel `json:"label,omitempty"`
}

type jsonTick struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	Length float64 `json:"length,omitempty"`
}

type jsonLabel struct {
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation,omitempty"`
	Moved    bool    `json:"moved,omitempty"`
}

type jsonGroup struct {
	Name    string   `json:"name"`
	Color   string   `json:"color"`
	Subpops []string `json:"subpops,omitempty"`
}

type jsonLink struct {
	A      string   `json:"a"`
	B      string   `json:"b"`
	Shared []string `json:"shared"`
}

// RenderJSON exports the drawn geometry in output-frame coordinates, the
// same coordinates RenderSVG draws with.
func RenderJSON(s scene.Snapshot, opts ...Option) ([]byte, error) {
	o := newOptions(opts)
	f := newFrame(s, o)

	out := jsonOutput{
		Width:  f.size.X,
		Height: f.size.Y,
		Margin: o.margin,
		Title:  o.title,
		State:  s.State.String(),
		Nodes:  make([]jsonNode, 0, len(s.Nodes)),
		Edges:  make([]jsonEdge, 0, len(s.Edges)),
	}
	for _, n := range s.Nodes {
		p := f.at(n.Pos)
		jn := jsonNode{
			ID: n.ID, Names: n.Names, Weight: n.Weight,
			X: p.X, Y: p.Y, Radius: n.Radius, Vertex: n.Vertex,
			Fill: n.Fill, Sets: n.Sets, Selected: n.Selected,
			Label: toJSONLabel(f, n.Label),
		}
		for _, sl := range n.Slices {
			jn.Slices = append(jn.Slices, jsonSlice{
				Name: sl.Name, Group: sl.Group, Color: sl.Color,
				Weight: sl.Weight, Start: sl.Start, Span: sl.Span,
			})
		}
		out.Nodes = append(out.Nodes, jn)
	}
	for _, e := range s.Edges {
		je := jsonEdge{
			ID: int64(e.ID), From: e.From, To: e.To, Weight: e.Weight,
			Style: string(e.Style), Hidden: e.Hidden, Overflow: e.Overflow,
			Selected: e.Selected, Label: toJSONLabel(f, e.Label),
		}
		if !e.Hidden {
			je.Path = quadPath(f.quad(e.Visible))
		}
		for _, t := range e.Ticks {
			p := f.at(t.Pos)
			je.Ticks = append(je.Ticks, jsonTick{X: p.X, Y: p.Y, DX: t.Dir.X, DY: t.Dir.Y, Length: t.Length})
		}
		out.Edges = append(out.Edges, je)
	}
	for _, g := range s.Groups {
		out.Groups = append(out.Groups, jsonGroup{Name: g.Name, Color: g.Color, Subpops: g.Subpops})
	}
	if o.haploweb {
		for _, l := range s.Web {
			out.Web = append(out.Web, jsonLink{A: l.A, B: l.B, Shared: l.Shared})
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode json")
	}
	return data, nil
}

func toJSONLabel(f frame, l *scene.LabelView) *jsonLabel {
	if l == nil {
		return nil
	}
	c := f.at(l.Center)
	return &jsonLabel{
		Text: l.Text, X: c.X, Y: c.Y,
		Width: l.Size.X, Height: l.Size.Y,
		Rotation: l.Rotation, Moved: l.Moved,
	}
}
