package quiz

// Plan is the supply decision for one batch request: how many questions to
// serve from the existing pool and how many to generate fresh.
type Plan struct {
	Cached int
	New    int
}

// Reference ratios assume a batch of ten; other batch sizes scale the same
// cached:new split proportionally.
const referenceBatch = 10

// PlanSupply decides the cached:new split for a topic given its current pool
// size. Tiers favor the pool as it grows; below ten questions everything the
// pool has is used and the rest is generated. contentChanged reports whether
// the topic's core-content was modified after the newest pooled question —
// when the pool holds at least ten questions and nothing changed, generation
// is suppressed entirely since there is nothing new to learn from.
func PlanSupply(poolSize, requested int, contentChanged bool) Plan {
	if requested <= 0 {
		return Plan{}
	}
	if poolSize < 0 {
		poolSize = 0
	}

	var p Plan
	switch {
	case poolSize >= 30:
		p = Plan{Cached: requested, New: 0}
	case poolSize >= 20:
		p = scale(requested, 9)
	case poolSize >= 10:
		p = scale(requested, 8)
	default:
		cached := poolSize
		if cached > requested {
			cached = requested
		}
		p = Plan{Cached: cached, New: requested - cached}
	}

	// A mid-tier ratio can still ask for more cached questions than the pool
	// holds when the batch is large; the shortfall shifts to generation.
	if p.Cached > poolSize {
		p.New += p.Cached - poolSize
		p.Cached = poolSize
	}

	// Unchanged content suppresses generation outright; the cached share
	// stays capped at what the pool actually holds so the orchestrator does
	// not convert the phantom excess back into generation calls.
	if poolSize >= 10 && !contentChanged {
		p.Cached += p.New
		p.New = 0
		if p.Cached > poolSize {
			p.Cached = poolSize
		}
	}

	return p
}

// scale applies a per-ten cached ratio to an arbitrary batch size, rounding
// the cached share down so generation is never starved entirely by rounding.
func scale(requested, cachedPerTen int) Plan {
	cached := requested * cachedPerTen / referenceBatch
	if cached > requested {
		cached = requested
	}
	return Plan{Cached: cached, New: requested - cached}
}
