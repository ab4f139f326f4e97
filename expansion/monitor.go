package expansion

import "github.com/poiesic/relsearch/core"

// Monitor provides hooks to observe an expansion.
// QueryExpanded and QueryFailed may be called concurrently from pool
// workers; all other hooks are called from the expanding goroutine.
type Monitor interface {
	Start(seed string, depth int)
	SeedFetched(suggestions []string)
	StartRound(round int, frontier []string)
	QueryExpanded(round int, query string, suggestions []string)
	QueryFailed(round int, query string, err error)
	FinishRound(stats core.RoundStats)
	Finish(result *core.Expansion)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int)                      {}
func (n *noopMonitor) SeedFetched(_ []string)                     {}
func (n *noopMonitor) StartRound(_ int, _ []string)               {}
func (n *noopMonitor) QueryExpanded(_ int, _ string, _ []string)  {}
func (n *noopMonitor) QueryFailed(_ int, _ string, _ error)       {}
func (n *noopMonitor) FinishRound(_ core.RoundStats)              {}
func (n *noopMonitor) Finish(_ *core.Expansion)                   {}
