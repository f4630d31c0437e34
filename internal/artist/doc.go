// Package artist adapts networks onto a host drawing surface. The Scene
// interface abstracts the host application; NetworkArtist translates nodes,
// edges, and labels into scene primitives grouped under cached collections.
package artist
