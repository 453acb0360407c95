package tracer

// decisionCache memoizes predicate decisions per source-unit identifier.
//
// A cached NoTag is as meaningful as a cached tag: units decided "skip"
// must not reach the predicate a second time either. Entries never expire;
// the cache lives exactly as long as its Tracer.
type decisionCache struct {
	decisions map[string]Tag
}

func newDecisionCache() *decisionCache {
	return &decisionCache{decisions: make(map[string]Tag)}
}

// lookup returns the cached decision for unit, if any.
func (c *decisionCache) lookup(unit string) (Tag, bool) {
	tag, ok := c.decisions[unit]
	return tag, ok
}

// store records the decision for unit.
func (c *decisionCache) store(unit string, tag Tag) {
	c.decisions[unit] = tag
}

// size returns the number of memoized decisions.
func (c *decisionCache) size() int {
	return len(c.decisions)
}

// reset drops every memoized decision.
func (c *decisionCache) reset() {
	c.decisions = make(map[string]Tag)
}
