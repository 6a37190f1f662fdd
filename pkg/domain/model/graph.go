package model

import "github.com/litmap/litmap/pkg/domain/types"

// Link is an undirected similarity edge between two graph nodes
type Link struct {
	Source     types.PaperID
	Target     types.PaperID
	Similarity float64 // Cosine similarity rounded to 4 decimal places
}

// Graph is the assembled result of a discovery run: the seed paper, the
// related papers found for it, and the similarity links between them
type Graph struct {
	SeedID         types.PaperID
	Nodes          []*Paper
	Links          []Link
	PartialData    bool
	DiscoveryError string
}

// Seed returns the root node of the graph
func (x *Graph) Seed() *Paper {
	for _, n := range x.Nodes {
		if n.IsRoot {
			return n
		}
	}
	return nil
}
