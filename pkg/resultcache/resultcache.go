// Package resultcache memoizes engine computations for callers that
// re-evaluate the same design repeatedly, such as the interactive browser
// flipping between scenarios. The engine itself stays stateless; this is
// the caller-side cache layered on top of it.
package resultcache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/qiongwang-oai/powertree/pkg/analysis"
	"github.com/qiongwang-oai/powertree/pkg/design"
	"github.com/qiongwang-oai/powertree/pkg/designio"
	"github.com/qiongwang-oai/powertree/pkg/observability"
)

// keyType labels this cache's entries in observability events.
const keyType = "result"

// Computer computes operating points, possibly from cache. Implementations
// return results that must be treated as read-only snapshots: cache hits
// hand the same value to every caller.
type Computer interface {
	Compute(d *design.Design, sc design.Scenario) (*analysis.Result, error)
	// ComputeWithCacheInfo is Compute plus whether the result was served
	// from cache.
	ComputeWithCacheInfo(d *design.Design, sc design.Scenario) (*analysis.Result, bool, error)
}

// Memo is an LRU-bounded result cache keyed by the design's serialized
// form and the scenario, so any design mutation naturally misses.
// Memo is safe for concurrent use.
type Memo struct {
	cache *lru.Cache[string, *analysis.Result]
	opts  []analysis.Option
}

// New creates a memo holding up to size results. Extra options (such as a
// logger) are passed to the engine on every miss.
func New(size int, opts ...analysis.Option) (*Memo, error) {
	c, err := lru.New[string, *analysis.Result](size)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &Memo{cache: c, opts: opts}, nil
}

// Compute returns the design's operating point under the scenario, from
// cache when an identical design and scenario were computed before.
func (m *Memo) Compute(d *design.Design, sc design.Scenario) (*analysis.Result, error) {
	res, _, err := m.ComputeWithCacheInfo(d, sc)
	return res, err
}

// ComputeWithCacheInfo is Compute plus whether the result came from cache.
func (m *Memo) ComputeWithCacheInfo(d *design.Design, sc design.Scenario) (*analysis.Result, bool, error) {
	sc = resolveScenario(d, sc)
	key, err := Key(d, sc)
	if err != nil {
		return nil, false, err
	}
	if res, ok := m.cache.Get(key); ok {
		observability.Cache().OnCacheHit(keyType)
		return res, true, nil
	}
	observability.Cache().OnCacheMiss(keyType)

	res := analysis.Compute(d, append(m.opts, analysis.WithScenario(sc))...)
	m.cache.Add(key, res)
	observability.Cache().OnCacheSet(keyType, m.cache.Len())
	return res, false, nil
}

// Len reports how many results are currently cached.
func (m *Memo) Len() int { return m.cache.Len() }

// Purge drops every cached result.
func (m *Memo) Purge() { m.cache.Purge() }

// Disabled computes fresh on every call. Useful for one-shot commands and
// for testing without cache effects.
type Disabled struct {
	opts []analysis.Option
}

// NewDisabled creates a pass-through computer with the given engine options.
func NewDisabled(opts ...analysis.Option) *Disabled {
	return &Disabled{opts: opts}
}

// Compute always invokes the engine.
func (c *Disabled) Compute(d *design.Design, sc design.Scenario) (*analysis.Result, error) {
	sc = resolveScenario(d, sc)
	return analysis.Compute(d, append(c.opts, analysis.WithScenario(sc))...), nil
}

// ComputeWithCacheInfo always invokes the engine and never reports a hit.
func (c *Disabled) ComputeWithCacheInfo(d *design.Design, sc design.Scenario) (*analysis.Result, bool, error) {
	res, err := c.Compute(d, sc)
	return res, false, err
}

// Key derives the cache key for one design and scenario: the SHA-256 of
// the design's JSON serialization with the scenario appended.
func Key(d *design.Design, sc design.Scenario) (string, error) {
	var buf bytes.Buffer
	if err := designio.WriteDesign(d, &buf); err != nil {
		return "", fmt.Errorf("hash design: %w", err)
	}
	buf.WriteString(string(sc))
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}

// resolveScenario mirrors the engine's scenario fallback so equivalent
// calls share a cache entry.
func resolveScenario(d *design.Design, sc design.Scenario) design.Scenario {
	if sc == "" {
		sc = d.Scenario
	}
	if sc == "" {
		sc = design.ScenarioTypical
	}
	return sc
}

// Ensure both implementations satisfy Computer.
var (
	_ Computer = (*Memo)(nil)
	_ Computer = (*Disabled)(nil)
)
