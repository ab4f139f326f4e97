// Package cluster groups related queries by semantic similarity.
//
// Queries are embedded through an ai.Embedder and assigned greedily: each
// query joins the most similar existing cluster whose leader is at least
// the configured cosine similarity away, or starts a new cluster of its own.
// Input order is preserved, so the first query of each cluster is its
// leader and clusters appear in the order they were founded.
package cluster
