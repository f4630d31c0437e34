package network

import (
	"encoding/json"
	"fmt"
	"os"
)

// XYZ is a point in cartesian space.
type XYZ [3]float64

// Edge connects two node identifiers.
type Edge struct {
	U int `json:"u"`
	V int `json:"v"`
}

// Network is a simple undirected graph with positioned nodes. Nodes keep
// their insertion order, which downstream consumers rely on for stable
// label indices.
type Network struct {
	name  string
	order []int
	nodes map[int]*node
	edges []Edge
	seen  map[Edge]struct{}
	next  int
}

type node struct {
	position XYZ
	attrs    map[string]any
}

// New returns an empty named network.
func New(name string) *Network {
	if name == "" {
		name = "network"
	}
	return &Network{
		name:  name,
		nodes: make(map[int]*node),
		seen:  make(map[Edge]struct{}),
	}
}

// Name returns the network name.
func (n *Network) Name() string {
	return n.name
}

// AddNode inserts a node at the given position and returns its identifier.
func (n *Network) AddNode(position XYZ) int {
	id := n.next
	n.next++
	n.order = append(n.order, id)
	n.nodes[id] = &node{position: position, attrs: make(map[string]any)}
	return id
}

// AddEdge connects two existing nodes. Self loops and duplicate edges are
// rejected; an edge and its reverse count as the same edge.
func (n *Network) AddEdge(u, v int) error {
	if u == v {
		return fmt.Errorf("self loop on node %d", u)
	}
	if _, ok := n.nodes[u]; !ok {
		return fmt.Errorf("unknown node %d", u)
	}
	if _, ok := n.nodes[v]; !ok {
		return fmt.Errorf("unknown node %d", v)
	}
	key := normalizeEdge(u, v)
	if _, dup := n.seen[key]; dup {
		return fmt.Errorf("duplicate edge %d-%d", u, v)
	}
	n.seen[key] = struct{}{}
	n.edges = append(n.edges, Edge{U: u, V: v})
	return nil
}

func normalizeEdge(u, v int) Edge {
	if u > v {
		u, v = v, u
	}
	return Edge{U: u, V: v}
}

// Nodes returns node identifiers in insertion order.
func (n *Network) Nodes() []int {
	out := make([]int, len(n.order))
	copy(out, n.order)
	return out
}

// Edges returns edges in insertion order.
func (n *Network) Edges() []Edge {
	out := make([]Edge, len(n.edges))
	copy(out, n.edges)
	return out
}

// NodeCount returns the number of nodes.
func (n *Network) NodeCount() int {
	return len(n.order)
}

// EdgeCount returns the number of edges.
func (n *Network) EdgeCount() int {
	return len(n.edges)
}

// Position returns the position of a node.
func (n *Network) Position(id int) (XYZ, bool) {
	nd, ok := n.nodes[id]
	if !ok {
		return XYZ{}, false
	}
	return nd.position, true
}

// SetPosition moves an existing node.
func (n *Network) SetPosition(id int, position XYZ) error {
	nd, ok := n.nodes[id]
	if !ok {
		return fmt.Errorf("unknown node %d", id)
	}
	nd.position = position
	return nil
}

// Attribute returns a named node attribute.
func (n *Network) Attribute(id int, key string) (any, bool) {
	nd, ok := n.nodes[id]
	if !ok {
		return nil, false
	}
	value, ok := nd.attrs[key]
	return value, ok
}

// SetAttribute stores a named attribute on an existing node.
func (n *Network) SetAttribute(id int, key string, value any) error {
	nd, ok := n.nodes[id]
	if !ok {
		return fmt.Errorf("unknown node %d", id)
	}
	nd.attrs[key] = value
	return nil
}

// Degree returns the number of edges incident to a node.
func (n *Network) Degree(id int) int {
	degree := 0
	for _, e := range n.edges {
		if e.U == id || e.V == id {
			degree++
		}
	}
	return degree
}

// Centroid returns the mean position of all nodes. Empty networks sit at the
// origin.
func (n *Network) Centroid() XYZ {
	if len(n.order) == 0 {
		return XYZ{}
	}
	var sum XYZ
	for _, id := range n.order {
		p := n.nodes[id].position
		sum[0] += p[0]
		sum[1] += p[1]
		sum[2] += p[2]
	}
	count := float64(len(n.order))
	return XYZ{sum[0] / count, sum[1] / count, sum[2] / count}
}

// Bounds returns the axis-aligned bounding box of the node positions.
func (n *Network) Bounds() (XYZ, XYZ, bool) {
	if len(n.order) == 0 {
		return XYZ{}, XYZ{}, false
	}
	first := n.nodes[n.order[0]].position
	min, max := first, first
	for _, id := range n.order[1:] {
		p := n.nodes[id].position
		for axis := 0; axis < 3; axis++ {
			if p[axis] < min[axis] {
				min[axis] = p[axis]
			}
			if p[axis] > max[axis] {
				max[axis] = p[axis]
			}
		}
	}
	return min, max, true
}

type wireNode struct {
	ID       int            `json:"id"`
	Position XYZ            `json:"position"`
	Attrs    map[string]any `json:"attrs,omitempty"`
}

type wireNetwork struct {
	Name  string     `json:"name"`
	Nodes []wireNode `json:"nodes"`
	Edges []Edge     `json:"edges"`
}

// MarshalJSON encodes the network with nodes in insertion order.
func (n *Network) MarshalJSON() ([]byte, error) {
	wire := wireNetwork{Name: n.name, Nodes: make([]wireNode, 0, len(n.order)), Edges: n.Edges()}
	for _, id := range n.order {
		nd := n.nodes[id]
		attrs := nd.attrs
		if len(attrs) == 0 {
			attrs = nil
		}
		wire.Nodes = append(wire.Nodes, wireNode{ID: id, Position: nd.position, Attrs: attrs})
	}
	return json.Marshal(wire)
}

// UnmarshalJSON replaces the network contents with the encoded graph.
func (n *Network) UnmarshalJSON(data []byte) error {
	var wire wireNetwork
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("decode network: %w", err)
	}
	fresh := New(wire.Name)
	for _, wn := range wire.Nodes {
		if _, dup := fresh.nodes[wn.ID]; dup {
			return fmt.Errorf("duplicate node %d", wn.ID)
		}
		attrs := wn.Attrs
		if attrs == nil {
			attrs = make(map[string]any)
		}
		fresh.order = append(fresh.order, wn.ID)
		fresh.nodes[wn.ID] = &node{position: wn.Position, attrs: attrs}
		if wn.ID >= fresh.next {
			fresh.next = wn.ID + 1
		}
	}
	for _, e := range wire.Edges {
		if err := fresh.AddEdge(e.U, e.V); err != nil {
			return err
		}
	}
	*n = *fresh
	return nil
}

// Save writes the network to a JSON file.
func (n *Network) Save(path string) error {
	data, err := json.MarshalIndent(n, "", "  ")
	if err != nil {
		return fmt.Errorf("encode network: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write network: %w", err)
	}
	return nil
}

// Load reads a network from a JSON file.
func Load(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read network: %w", err)
	}
	n := New("")
	if err := json.Unmarshal(data, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Grid builds a planar grid with nx by ny nodes spaced evenly apart. Handy
// for demos and tests.
func Grid(name string, nx, ny int, spacing float64) (*Network, error) {
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", nx, ny)
	}
	if spacing <= 0 {
		return nil, fmt.Errorf("grid spacing must be positive, got %g", spacing)
	}
	n := New(name)
	ids := make(map[[2]int]int, nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			ids[[2]int{i, j}] = n.AddNode(XYZ{float64(i) * spacing, float64(j) * spacing, 0})
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			if i+1 < nx {
				if err := n.AddEdge(ids[[2]int{i, j}], ids[[2]int{i + 1, j}]); err != nil {
					return nil, err
				}
			}
			if j+1 < ny {
				if err := n.AddEdge(ids[[2]int{i, j}], ids[[2]int{i, j + 1}]); err != nil {
					return nil, err
				}
			}
		}
	}
	return n, nil
}
