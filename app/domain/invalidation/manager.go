package invalidation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"nestiq.ai/listing-gateway/app/infrastructure/cache"
	"nestiq.ai/listing-gateway/app/utils/logger"
)

// Manager walks a fixed dependency graph between key patterns and cascades
// invalidations through the cache facade. Derived data is declared dependent
// on the data it was computed from, so deleting a source never strands the
// derivations built on it.
type Manager struct {
	cache *cache.TieredCache
	edges map[string][]string
	// trigger patterns in stable order for deterministic traversal
	triggers []string
}

// DefaultEdges is the gateway's dependency graph: raw record updates ripple
// into detail entries, detail entries into search pages, search pages into
// precomputed responses.
func DefaultEdges() map[string][]string {
	return map[string][]string{
		"v1:listings:record:*": {"v1:listings:detail:*"},
		"v1:listings:detail:*": {"v1:listings:search:*", "v1:precomputed:detail:*"},
		"v1:listings:search:*": {"v1:precomputed:search:*"},
	}
}

// NewManager validates every pattern in the graph up front; a malformed edge
// is a construction error, never a runtime surprise.
func NewManager(tieredCache *cache.TieredCache, edges map[string][]string) (*Manager, error) {
	triggers := make([]string, 0, len(edges))
	for trigger, dependents := range edges {
		if _, _, err := cache.PatternPrefix(trigger); err != nil {
			return nil, fmt.Errorf("invalid trigger pattern %q: %w", trigger, err)
		}
		for _, dependent := range dependents {
			if _, _, err := cache.PatternPrefix(dependent); err != nil {
				return nil, fmt.Errorf("invalid dependent pattern %q for trigger %q: %w", dependent, trigger, err)
			}
		}
		triggers = append(triggers, trigger)
	}
	sort.Strings(triggers)

	return &Manager{
		cache:    tieredCache,
		edges:    edges,
		triggers: triggers,
	}, nil
}

// InvalidateWithDependencies removes everything matching the trigger key or
// pattern plus the transitive closure of its dependents, each pattern
// invalidated exactly once, and returns the summed affected-entry count.
// The visited set makes traversal terminate on cyclic graphs.
func (m *Manager) InvalidateWithDependencies(ctx context.Context, trigger string) (int, error) {
	if _, _, err := cache.PatternPrefix(trigger); err != nil {
		return 0, err
	}

	total := 0
	visited := make(map[string]bool)
	queue := []string{trigger}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		removed, err := m.cache.InvalidatePattern(ctx, current)
		if err != nil {
			return total, err
		}
		total += removed

		for _, dependent := range m.dependentsOf(current) {
			if !visited[dependent] {
				queue = append(queue, dependent)
			}
		}
	}

	logger.GetLogger().Debugf("Cascade for %s invalidated %d entries across %d patterns", trigger, total, len(visited))
	return total, nil
}

func (m *Manager) dependentsOf(trigger string) []string {
	var dependents []string
	for _, edge := range m.triggers {
		if covers(edge, trigger) {
			dependents = append(dependents, m.edges[edge]...)
		}
	}
	return dependents
}

// covers reports whether a trigger reaches an edge: the trigger is the edge
// pattern itself, a key or narrower pattern falling under it, or a broader
// pattern whose prefix contains the edge.
func covers(edge, trigger string) bool {
	if edge == trigger {
		return true
	}
	if matches, err := cache.MatchesPattern(edge, trigger); err == nil && matches {
		return true
	}
	triggerPrefix, triggerWildcard, err := cache.PatternPrefix(trigger)
	if err != nil || !triggerWildcard {
		return false
	}
	edgePrefix, _, err := cache.PatternPrefix(edge)
	if err != nil {
		return false
	}
	return strings.HasPrefix(edgePrefix, triggerPrefix)
}
