package artist_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lattice/internal/artist"
	"lattice/internal/network"
)

type fakeScene struct {
	created map[string]int
	objects map[string][]any
}

func newFakeScene() *fakeScene {
	return &fakeScene{
		created: make(map[string]int),
		objects: make(map[string][]any),
	}
}

func (s *fakeScene) Collection(parent, name string) (string, error) {
	handle := parent + "/" + name
	s.created[handle]++
	if _, ok := s.objects[handle]; !ok {
		s.objects[handle] = nil
	}
	return handle, nil
}

func (s *fakeScene) ClearCollection(handle string) error {
	s.objects[handle] = nil
	return nil
}

func (s *fakeScene) DrawPoints(handle string, points []artist.Point) ([]string, error) {
	names := make([]string, len(points))
	for i, point := range points {
		s.objects[handle] = append(s.objects[handle], point)
		names[i] = point.Name
	}
	return names, nil
}

func (s *fakeScene) DrawLines(handle string, lines []artist.Line) ([]string, error) {
	names := make([]string, len(lines))
	for i, line := range lines {
		s.objects[handle] = append(s.objects[handle], line)
		names[i] = line.Name
	}
	return names, nil
}

func (s *fakeScene) DrawTexts(handle string, texts []artist.Text) ([]string, error) {
	names := make([]string, len(texts))
	for i, text := range texts {
		s.objects[handle] = append(s.objects[handle], text)
		names[i] = text.Name
	}
	return names, nil
}

func pathNetwork(t *testing.T) *network.Network {
	t.Helper()
	n := network.New("path")
	a := n.AddNode(network.XYZ{0, 0, 0})
	b := n.AddNode(network.XYZ{2, 0, 0})
	c := n.AddNode(network.XYZ{4, 0, 0})
	require.NoError(t, n.AddEdge(a, b))
	require.NoError(t, n.AddEdge(b, c))
	return n
}

func newArtist(t *testing.T, scene *fakeScene, opts artist.Options) *artist.NetworkArtist {
	t.Helper()
	a, err := artist.New(scene, pathNetwork(t), opts)
	require.NoError(t, err)
	return a
}

func TestNewRequiresSceneAndNetwork(t *testing.T) {
	_, err := artist.New(nil, network.New("x"), artist.Options{})
	assert.Error(t, err)
	_, err = artist.New(newFakeScene(), nil, artist.Options{})
	assert.Error(t, err)
}

func TestCollectionsCreatedOncePerKind(t *testing.T) {
	scene := newFakeScene()
	a := newArtist(t, scene, artist.Options{})

	for i := 0; i < 3; i++ {
		_, err := a.DrawNodes(nil, nil)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, scene.created["/path"], "root collection")
	assert.Equal(t, 1, scene.created["/path/Nodes"], "node collection must be cached")
}

func TestDrawNodesNamesAndColors(t *testing.T) {
	scene := newFakeScene()
	a := newArtist(t, scene, artist.Options{NodeColor: artist.Color{1, 1, 1}})

	handles, err := a.DrawNodes(nil, map[int]artist.Color{1: {1, 0, 0}})
	require.NoError(t, err)
	assert.Equal(t, []string{"path.node.0", "path.node.1", "path.node.2"}, handles)

	drawn := scene.objects["/path/Nodes"]
	require.Len(t, drawn, 3)
	assert.Equal(t, artist.Color{1, 0, 0}, drawn[1].(artist.Point).Color)
	assert.Equal(t, artist.Color{1, 1, 1}, drawn[2].(artist.Point).Color)
	assert.Equal(t, 0.05, drawn[0].(artist.Point).Radius)
}

func TestDrawNodesUnknownNode(t *testing.T) {
	a := newArtist(t, newFakeScene(), artist.Options{})
	_, err := a.DrawNodes([]int{99}, nil)
	assert.Error(t, err)
}

func TestDrawEdges(t *testing.T) {
	scene := newFakeScene()
	a := newArtist(t, scene, artist.Options{EdgeColor: artist.Color{0, 0, 0}})

	handles, err := a.DrawEdges(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"path.edge.0-1", "path.edge.1-2"}, handles)

	drawn := scene.objects["/path/Edges"]
	require.Len(t, drawn, 2)
	line := drawn[0].(artist.Line)
	assert.Equal(t, network.XYZ{0, 0, 0}, line.Start)
	assert.Equal(t, network.XYZ{2, 0, 0}, line.End)
	assert.Equal(t, 0.02, line.Width)
}

func TestDrawClearsBeforeRedrawing(t *testing.T) {
	scene := newFakeScene()
	a := newArtist(t, scene, artist.Options{})

	require.NoError(t, a.Draw())
	require.NoError(t, a.Draw())

	assert.Len(t, scene.objects["/path/Nodes"], 3)
	assert.Len(t, scene.objects["/path/Edges"], 2)
}

func TestDrawHonorsVisibility(t *testing.T) {
	scene := newFakeScene()
	a := newArtist(t, scene, artist.Options{HideEdges: true})

	require.NoError(t, a.Draw())

	assert.Len(t, scene.objects["/path/Nodes"], 3)
	assert.Empty(t, scene.objects["/path/Edges"])
}

func TestSelectionRestrictsDrawing(t *testing.T) {
	scene := newFakeScene()
	a := newArtist(t, scene, artist.Options{})

	a.SelectNodes([]int{2})
	a.SelectEdges([]network.Edge{{U: 1, V: 2}})
	require.NoError(t, a.Draw())

	assert.Len(t, scene.objects["/path/Nodes"], 1)
	assert.Len(t, scene.objects["/path/Edges"], 1)

	a.SelectNodes(nil)
	require.NoError(t, a.Draw())
	assert.Len(t, scene.objects["/path/Nodes"], 3)
}

func TestNodeLabelsByIndex(t *testing.T) {
	scene := newFakeScene()
	a := newArtist(t, scene, artist.Options{})

	_, err := a.DrawNodeLabels(artist.NodeLabelSpec{Mode: artist.LabelIndex}, nil)
	require.NoError(t, err)

	drawn := scene.objects["/path/NodeLabels"]
	require.Len(t, drawn, 3)
	bodies := make([]string, len(drawn))
	for i, obj := range drawn {
		bodies[i] = obj.(artist.Text).Body
	}
	assert.Equal(t, []string{"0", "1", "2"}, bodies)
}

func TestNodeLabelsDefaultToIdentifiers(t *testing.T) {
	scene := newFakeScene()
	a := newArtist(t, scene, artist.Options{})
	a.SelectNodes([]int{2, 0})

	_, err := a.DrawNodeLabels(artist.NodeLabelSpec{}, nil)
	require.NoError(t, err)

	drawn := scene.objects["/path/NodeLabels"]
	require.Len(t, drawn, 2)
	assert.Equal(t, "2", drawn[0].(artist.Text).Body)
	assert.Equal(t, "path.nodelabel.2", drawn[0].(artist.Text).Name)
}

func TestNodeLabelsCustomMapping(t *testing.T) {
	scene := newFakeScene()
	a := newArtist(t, scene, artist.Options{})

	_, err := a.DrawNodeLabels(artist.NodeLabelSpec{Custom: map[int]string{1: "mid"}}, nil)
	require.NoError(t, err)

	drawn := scene.objects["/path/NodeLabels"]
	require.Len(t, drawn, 1)
	assert.Equal(t, "mid", drawn[0].(artist.Text).Body)
}

func TestNodeLabelsRejectUnknownMode(t *testing.T) {
	a := newArtist(t, newFakeScene(), artist.Options{})
	_, err := a.DrawNodeLabels(artist.NodeLabelSpec{Mode: "degree"}, nil)
	assert.ErrorIs(t, err, artist.ErrNotImplemented)
}

func TestEdgeLabels(t *testing.T) {
	scene := newFakeScene()
	a := newArtist(t, scene, artist.Options{})

	_, err := a.DrawEdgeLabels(artist.EdgeLabelSpec{}, nil)
	require.NoError(t, err)

	drawn := scene.objects["/path/EdgeLabels"]
	require.Len(t, drawn, 2)
	first := drawn[0].(artist.Text)
	assert.Equal(t, "0-1", first.Body)
	assert.Equal(t, network.XYZ{1, 0, 0}, first.Position)

	require.NoError(t, a.ClearEdgeLabels())
	_, err = a.DrawEdgeLabels(artist.EdgeLabelSpec{
		Custom: map[network.Edge]string{{U: 1, V: 2}: "span"},
	}, nil)
	require.NoError(t, err)
	drawn = scene.objects["/path/EdgeLabels"]
	require.Len(t, drawn, 1)
	assert.Equal(t, "span", drawn[0].(artist.Text).Body)
}
