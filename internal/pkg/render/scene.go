// Package render turns a computed layout into a drawable scene and emits it
// as SVG. The scene is a flat list of primitives in paint order; geometry is
// fully resolved here so tests can assert pixel positions without parsing
// markup.
package render

import (
	"github.com/Shintumon/combochart/internal/pkg/config"
)

// Anim is per-mark transition metadata. It never influences geometry: a
// scene built with animation disabled differs from the enabled one only in
// these fields.
type Anim struct {
	Duration int
	Easing   config.Easing
	Delay    int
}

// Node is one drawable primitive.
type Node interface {
	node()
}

// Rect is an axis-aligned rectangle. RadiusTop rounds the two upper corners
// only, the treatment for the topmost visible bar segment; Radius rounds all
// four, used for the chrome frame. The two are mutually exclusive.
type Rect struct {
	X, Y, W, H  float64
	Fill        string
	Opacity     float64
	Stroke      string
	StrokeWidth float64
	RadiusTop   float64
	Radius      float64
	Class       string
	Anim        Anim
}

// Line is a straight stroke, used for axes and grid lines.
type Line struct {
	X1, Y1, X2, Y2 float64
	Stroke         string
	Width          float64
	Opacity        float64
	Dash           string
	Class          string
}

// Path is a pre-built SVG path, used for the line series and rounded bars.
type Path struct {
	D           string
	Stroke      string
	StrokeWidth float64
	Fill        string
	Opacity     float64
	Dash        string
	Class       string
	Anim        Anim
}

// Marker is a point symbol on a line vertex.
type Marker struct {
	X, Y        float64
	Shape       config.PointShape
	Size        float64
	Fill        string
	Stroke      string
	StrokeWidth float64
	Class       string
	Anim        Anim
}

// Text is a positioned label. Rotation is in degrees around (X, Y).
type Text struct {
	X, Y     float64
	Content  string
	Font     config.FontSpec
	Anchor   string // start, middle, end
	Rotation float64
	Class    string
}

func (Rect) node()   {}
func (Line) node()   {}
func (Path) node()   {}
func (Marker) node() {}
func (Text) node()   {}

// Scene is the complete drawable output of one render pass.
type Scene struct {
	Width      float64
	Height     float64
	Background string
	Nodes      []Node
}

func (s *Scene) add(nodes ...Node) {
	s.Nodes = append(s.Nodes, nodes...)
}
