package artist

import (
	"errors"
	"fmt"

	"lattice/internal/network"
)

// ErrNotImplemented reports a label specification shape the artist does not
// support.
var ErrNotImplemented = errors.New("not implemented")

// Label text resolution modes.
const (
	LabelKey   = "key"
	LabelIndex = "index"
)

// NodeLabelSpec selects the label text per node. An empty Mode means LabelKey.
// Custom takes precedence over Mode when set.
type NodeLabelSpec struct {
	Mode   string
	Custom map[int]string
}

// EdgeLabelSpec selects the label text per edge. Only the default "u-v" text
// and caller-supplied mappings are supported.
type EdgeLabelSpec struct {
	Custom map[network.Edge]string
}

// Options tunes the visual output of a NetworkArtist. Zero values fall back
// to the package defaults.
type Options struct {
	NodeColor   Color
	EdgeColor   Color
	PointRadius float64
	LineWidth   float64
	LabelHeight float64
	HideNodes   bool
	HideEdges   bool
}

func (o *Options) withDefaults() {
	zero := Color{}
	if o.NodeColor == zero {
		o.NodeColor = Color{1, 1, 1}
	}
	if o.PointRadius == 0 {
		o.PointRadius = 0.05
	}
	if o.LineWidth == 0 {
		o.LineWidth = 0.02
	}
	if o.LabelHeight == 0 {
		o.LabelHeight = 0.1
	}
}

// Grouping kinds under the artist's root collection.
const (
	kindNodes      = "Nodes"
	kindEdges      = "Edges"
	kindNodeLabels = "NodeLabels"
	kindEdgeLabels = "EdgeLabels"
)

// NetworkArtist draws a network into a scene. Visuals for each entity kind
// live in their own sub-grouping under a root grouping named after the
// network; sub-groupings are created on first use and reused afterwards.
// Instances assume a single caller goroutine.
type NetworkArtist struct {
	scene   Scene
	network *network.Network
	opts    Options

	root        string
	collections map[string]string

	nodes []int
	edges []network.Edge
}

// New prepares an artist for the given network. The root grouping is created
// immediately; sub-groupings wait until something is drawn into them.
func New(scene Scene, n *network.Network, opts Options) (*NetworkArtist, error) {
	if scene == nil {
		return nil, errors.New("artist requires a scene")
	}
	if n == nil {
		return nil, errors.New("artist requires a network")
	}
	opts.withDefaults()

	root, err := scene.Collection("", n.Name())
	if err != nil {
		return nil, fmt.Errorf("create root collection: %w", err)
	}
	return &NetworkArtist{
		scene:       scene,
		network:     n,
		opts:        opts,
		root:        root,
		collections: make(map[string]string),
	}, nil
}

// SelectNodes restricts drawing to the given nodes. Nil restores drawing all
// nodes.
func (a *NetworkArtist) SelectNodes(nodes []int) {
	a.nodes = nodes
}

// SelectEdges restricts drawing to the given edges. Nil restores drawing all
// edges.
func (a *NetworkArtist) SelectEdges(edges []network.Edge) {
	a.edges = edges
}

// collection returns the handle of a sub-grouping, creating it under the
// root on first request and caching it for reuse.
func (a *NetworkArtist) collection(kind string) (string, error) {
	if handle, ok := a.collections[kind]; ok {
		return handle, nil
	}
	handle, err := a.scene.Collection(a.root, kind)
	if err != nil {
		return "", fmt.Errorf("create %s collection: %w", kind, err)
	}
	a.collections[kind] = handle
	return handle, nil
}

func (a *NetworkArtist) clear(kind string) error {
	handle, ok := a.collections[kind]
	if !ok {
		// Nothing was ever drawn into this grouping.
		return nil
	}
	return a.scene.ClearCollection(handle)
}

// ClearNodes removes all node visuals.
func (a *NetworkArtist) ClearNodes() error {
	return a.clear(kindNodes)
}

// ClearEdges removes all edge visuals.
func (a *NetworkArtist) ClearEdges() error {
	return a.clear(kindEdges)
}

// ClearNodeLabels removes all node label visuals.
func (a *NetworkArtist) ClearNodeLabels() error {
	return a.clear(kindNodeLabels)
}

// ClearEdgeLabels removes all edge label visuals.
func (a *NetworkArtist) ClearEdgeLabels() error {
	return a.clear(kindEdgeLabels)
}

// Clear removes every visual the artist has drawn.
func (a *NetworkArtist) Clear() error {
	for _, kind := range []string{kindNodes, kindEdges, kindNodeLabels, kindEdgeLabels} {
		if err := a.clear(kind); err != nil {
			return err
		}
	}
	return nil
}

// Draw clears previous visuals and redraws the current node and edge
// selections, honoring the visibility options.
func (a *NetworkArtist) Draw() error {
	if err := a.Clear(); err != nil {
		return err
	}
	if !a.opts.HideNodes {
		if _, err := a.DrawNodes(nil, nil); err != nil {
			return err
		}
	}
	if !a.opts.HideEdges {
		if _, err := a.DrawEdges(nil, nil); err != nil {
			return err
		}
	}
	return nil
}

// DrawNodes draws the given nodes, defaulting to the current selection.
// Per-node colors override the base node color. The created object handles
// are returned.
func (a *NetworkArtist) DrawNodes(nodes []int, colors map[int]Color) ([]string, error) {
	if nodes == nil {
		nodes = a.selectedNodes()
	}
	points := make([]Point, 0, len(nodes))
	for _, id := range nodes {
		position, ok := a.network.Position(id)
		if !ok {
			return nil, fmt.Errorf("draw nodes: unknown node %d", id)
		}
		points = append(points, Point{
			Position: position,
			Name:     fmt.Sprintf("%s.node.%d", a.network.Name(), id),
			Color:    pickColor(colors, id, a.opts.NodeColor),
			Radius:   a.opts.PointRadius,
		})
	}
	handle, err := a.collection(kindNodes)
	if err != nil {
		return nil, err
	}
	return a.scene.DrawPoints(handle, points)
}

// DrawEdges draws the given edges, defaulting to the current selection.
// Per-edge colors override the base edge color. The created object handles
// are returned.
func (a *NetworkArtist) DrawEdges(edges []network.Edge, colors map[network.Edge]Color) ([]string, error) {
	if edges == nil {
		edges = a.selectedEdges()
	}
	lines := make([]Line, 0, len(edges))
	for _, edge := range edges {
		start, end, err := a.endpoints(edge)
		if err != nil {
			return nil, fmt.Errorf("draw edges: %w", err)
		}
		lines = append(lines, Line{
			Start: start,
			End:   end,
			Name:  fmt.Sprintf("%s.edge.%d-%d", a.network.Name(), edge.U, edge.V),
			Color: pickColor(colors, edge, a.opts.EdgeColor),
			Width: a.opts.LineWidth,
		})
	}
	handle, err := a.collection(kindEdges)
	if err != nil {
		return nil, err
	}
	return a.scene.DrawLines(handle, lines)
}

// DrawNodeLabels draws a text label per selected node. The label text comes
// from the node identifier, its position in the selection, or a
// caller-supplied mapping. Any other mode fails with ErrNotImplemented.
func (a *NetworkArtist) DrawNodeLabels(spec NodeLabelSpec, colors map[int]Color) ([]string, error) {
	nodes := a.selectedNodes()

	var order []int
	texts := make(map[int]string)
	switch {
	case spec.Custom != nil:
		for _, id := range nodes {
			if body, ok := spec.Custom[id]; ok {
				order = append(order, id)
				texts[id] = body
			}
		}
	case spec.Mode == "" || spec.Mode == LabelKey:
		for _, id := range nodes {
			order = append(order, id)
			texts[id] = fmt.Sprintf("%d", id)
		}
	case spec.Mode == LabelIndex:
		for index, id := range nodes {
			order = append(order, id)
			texts[id] = fmt.Sprintf("%d", index)
		}
	default:
		return nil, fmt.Errorf("node label mode %q: %w", spec.Mode, ErrNotImplemented)
	}

	labels := make([]Text, 0, len(order))
	for _, id := range order {
		position, ok := a.network.Position(id)
		if !ok {
			return nil, fmt.Errorf("draw node labels: unknown node %d", id)
		}
		labels = append(labels, Text{
			Position: position,
			Name:     fmt.Sprintf("%s.nodelabel.%d", a.network.Name(), id),
			Body:     texts[id],
			Color:    pickColor(colors, id, a.opts.NodeColor),
			Height:   a.opts.LabelHeight,
		})
	}
	handle, err := a.collection(kindNodeLabels)
	if err != nil {
		return nil, err
	}
	return a.scene.DrawTexts(handle, labels)
}

// DrawEdgeLabels draws a text label at the midpoint of each selected edge.
// Text defaults to "u-v" unless a custom mapping supplies it.
func (a *NetworkArtist) DrawEdgeLabels(spec EdgeLabelSpec, colors map[network.Edge]Color) ([]string, error) {
	edges := a.selectedEdges()

	labels := make([]Text, 0, len(edges))
	for _, edge := range edges {
		body := fmt.Sprintf("%d-%d", edge.U, edge.V)
		if spec.Custom != nil {
			custom, ok := spec.Custom[edge]
			if !ok {
				continue
			}
			body = custom
		}
		start, end, err := a.endpoints(edge)
		if err != nil {
			return nil, fmt.Errorf("draw edge labels: %w", err)
		}
		labels = append(labels, Text{
			Position: midpoint(start, end),
			Name:     fmt.Sprintf("%s.edgelabel.%d-%d", a.network.Name(), edge.U, edge.V),
			Body:     body,
			Color:    pickColor(colors, edge, a.opts.EdgeColor),
			Height:   a.opts.LabelHeight,
		})
	}
	handle, err := a.collection(kindEdgeLabels)
	if err != nil {
		return nil, err
	}
	return a.scene.DrawTexts(handle, labels)
}

func (a *NetworkArtist) selectedNodes() []int {
	if a.nodes != nil {
		return a.nodes
	}
	return a.network.Nodes()
}

func (a *NetworkArtist) selectedEdges() []network.Edge {
	if a.edges != nil {
		return a.edges
	}
	return a.network.Edges()
}

func (a *NetworkArtist) endpoints(edge network.Edge) (network.XYZ, network.XYZ, error) {
	start, ok := a.network.Position(edge.U)
	if !ok {
		return network.XYZ{}, network.XYZ{}, fmt.Errorf("unknown node %d", edge.U)
	}
	end, ok := a.network.Position(edge.V)
	if !ok {
		return network.XYZ{}, network.XYZ{}, fmt.Errorf("unknown node %d", edge.V)
	}
	return start, end, nil
}

func pickColor[K comparable](colors map[K]Color, key K, fallback Color) Color {
	if color, ok := colors[key]; ok {
		return color
	}
	return fallback
}

func midpoint(a, b network.XYZ) network.XYZ {
	return network.XYZ{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2, (a[2] + b[2]) / 2}
}
