// Package network holds the positioned graph structure shared by the drawing
// adapter and the CLI. Nodes carry cartesian positions and free-form
// attributes; edges are undirected and deduplicated. Networks round-trip
// through JSON files and export to Graphviz DOT.
package network
