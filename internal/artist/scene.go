package artist

import "lattice/internal/network"

// Color is a normalized RGB triple.
type Color [3]float64

// Point describes a node visual.
type Point struct {
	Position network.XYZ
	Name     string
	Color    Color
	Radius   float64
}

// Line describes an edge visual.
type Line struct {
	Start network.XYZ
	End   network.XYZ
	Name  string
	Color Color
	Width float64
}

// Text describes a label visual.
type Text struct {
	Position network.XYZ
	Name     string
	Body     string
	Color    Color
	Height   float64
}

// Scene is the host-application drawing surface. Implementations create and
// look up named groupings, delete the objects inside a grouping, and turn
// primitive descriptions into visual objects identified by opaque handles.
type Scene interface {
	// Collection finds or creates a named grouping under parent and returns
	// its handle. An empty parent addresses the scene root.
	Collection(parent, name string) (string, error)

	// ClearCollection deletes every object inside the grouping.
	ClearCollection(handle string) error

	DrawPoints(handle string, points []Point) ([]string, error)
	DrawLines(handle string, lines []Line) ([]string, error)
	DrawTexts(handle string, texts []Text) ([]string, error)
}
