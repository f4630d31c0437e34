package network

import (
	"fmt"
	"strings"

	"github.com/awalterschulze/gographviz"
)

// DOT renders the network as a Graphviz document. Node positions are pinned
// so layout engines that honor pos attributes reproduce the geometry.
func DOT(n *Network) (string, error) {
	graphName := sanitizeDOTName(n.Name())

	dotGraph := gographviz.NewGraph()
	if err := dotGraph.SetName(graphName); err != nil {
		return "", err
	}
	if err := dotGraph.SetDir(false); err != nil {
		return "", err
	}

	for index, id := range n.Nodes() {
		position, _ := n.Position(id)
		attrs := map[string]string{
			"label": fmt.Sprintf("\"%d\"", index),
			"shape": "\"circle\"",
			"pos":   fmt.Sprintf("\"%g,%g!\"", position[0], position[1]),
		}
		if err := dotGraph.AddNode(graphName, dotNodeName(id), attrs); err != nil {
			return "", err
		}
	}

	for _, edge := range n.Edges() {
		err := dotGraph.AddEdge(dotNodeName(edge.U), dotNodeName(edge.V), false, map[string]string{
			"color": "\"black\"",
		})
		if err != nil {
			return "", err
		}
	}

	return dotGraph.String(), nil
}

func dotNodeName(id int) string {
	return fmt.Sprintf("n%d", id)
}

// sanitizeDOTName maps arbitrary network names onto valid DOT identifiers.
func sanitizeDOTName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" || (out[0] >= '0' && out[0] <= '9') {
		out = "g" + out
	}
	return out
}
