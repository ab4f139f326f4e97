package cluster

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/relsearch/ai"
)

// DefaultThreshold is the minimum cosine similarity for joining a cluster.
const DefaultThreshold = 0.80

// Cluster is a group of related queries.
type Cluster struct {
	Leader  string   // First query of the group
	Members []string // All queries including Leader, in input order
}

// Size returns the number of queries in the cluster.
func (c Cluster) Size() int {
	return len(c.Members)
}

// Clusterer groups queries using an embedder.
type Clusterer struct {
	embedder  ai.Embedder
	threshold float32
	logger    *slog.Logger
}

// Option configures a Clusterer.
type Option func(*Clusterer) error

// WithThreshold sets the minimum cosine similarity for joining a cluster.
// Default is DefaultThreshold.
func WithThreshold(threshold float64) Option {
	return func(c *Clusterer) error {
		if threshold <= 0 || threshold > 1 {
			return fmt.Errorf("%w: %v", ErrInvalidThreshold, threshold)
		}
		c.threshold = float32(threshold)
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Clusterer) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger.With("component", "cluster")
		return nil
	}
}

// NewClusterer creates a clusterer backed by embedder.
func NewClusterer(embedder ai.Embedder, opts ...Option) (*Clusterer, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	c := &Clusterer{
		embedder:  embedder,
		threshold: DefaultThreshold,
		logger:    slog.Default().With("component", "cluster"),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Cluster groups queries. Every query lands in exactly one cluster.
func (c *Clusterer) Cluster(ctx context.Context, queries []string) ([]Cluster, error) {
	if len(queries) == 0 {
		return []Cluster{}, nil
	}

	vectors, err := c.embedder.EmbedTexts(ctx, queries)
	if err != nil {
		return nil, fmt.Errorf("embedding queries: %w", err)
	}
	if len(vectors) != len(queries) {
		return nil, fmt.Errorf("%w: got %d vectors for %d queries", ErrEmbeddingMismatch, len(vectors), len(queries))
	}

	var clusters []Cluster
	var leaders [][]float32
	for i, query := range queries {
		v := NormalizeVector(vectors[i])

		best, bestSim := -1, c.threshold
		for j, leader := range leaders {
			if sim := dot(v, leader); sim >= bestSim {
				// Ties go to the older cluster
				if best == -1 || sim > bestSim {
					best, bestSim = j, sim
				}
			}
		}

		if best == -1 {
			clusters = append(clusters, Cluster{Leader: query, Members: []string{query}})
			leaders = append(leaders, v)
			continue
		}
		clusters[best].Members = append(clusters[best].Members, query)
	}

	c.logger.Debug("queries clustered", "queries", len(queries), "clusters", len(clusters))
	return clusters, nil
}
