package quiz

import "testing"

func TestPlanSupplyTiers(t *testing.T) {
	tests := []struct {
		name           string
		poolSize       int
		requested      int
		contentChanged bool
		want           Plan
	}{
		{"large pool serves cache only", 30, 10, true, Plan{Cached: 10, New: 0}},
		{"very large pool", 120, 10, true, Plan{Cached: 10, New: 0}},
		{"pool 25 request 10", 25, 10, true, Plan{Cached: 9, New: 1}},
		{"pool 20 lower bound", 20, 10, true, Plan{Cached: 9, New: 1}},
		{"pool 15 request 10", 15, 10, true, Plan{Cached: 8, New: 2}},
		{"pool 10 lower bound", 10, 10, true, Plan{Cached: 8, New: 2}},
		{"pool 5 request 10", 5, 10, true, Plan{Cached: 5, New: 5}},
		{"empty pool", 0, 10, true, Plan{Cached: 0, New: 10}},
		{"pool exceeds small request", 7, 3, true, Plan{Cached: 3, New: 0}},
		{"zero request", 25, 0, true, Plan{}},
		{"negative pool treated as empty", -1, 4, true, Plan{Cached: 0, New: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlanSupply(tt.poolSize, tt.requested, tt.contentChanged)
			if got != tt.want {
				t.Errorf("PlanSupply(%d, %d, %v) = %+v, want %+v", tt.poolSize, tt.requested, tt.contentChanged, got, tt.want)
			}
		})
	}
}

func TestPlanSupplyProportionalScaling(t *testing.T) {
	// Larger batches keep the same cached:new ratio as the reference batch.
	got := PlanSupply(25, 20, true)
	if got.Cached != 18 || got.New != 2 {
		t.Errorf("PlanSupply(25, 20) = %+v, want {18 2}", got)
	}

	// When the scaled cached share outruns the pool, the shortfall is
	// generated instead.
	got = PlanSupply(12, 20, true)
	if got.Cached != 12 || got.New != 8 {
		t.Errorf("PlanSupply(12, 20) = %+v, want {12 8}", got)
	}
}

func TestPlanSupplyFreshnessGate(t *testing.T) {
	// Unchanged content with an adequate pool suppresses generation.
	got := PlanSupply(15, 10, false)
	if got.New != 0 {
		t.Errorf("PlanSupply(15, 10, unchanged) = %+v, want New == 0", got)
	}
	if got.Cached != 10 {
		t.Errorf("PlanSupply(15, 10, unchanged) = %+v, want Cached == 10", got)
	}

	// A thin pool generates regardless of content staleness.
	got = PlanSupply(5, 10, false)
	if got.New != 5 {
		t.Errorf("PlanSupply(5, 10, unchanged) = %+v, want New == 5", got)
	}

	// Requests beyond the pool stay capped at the pool when nothing changed;
	// the gate must not leak the excess back into generation.
	got = PlanSupply(15, 20, false)
	if got != (Plan{Cached: 15, New: 0}) {
		t.Errorf("PlanSupply(15, 20, unchanged) = %+v, want {15 0}", got)
	}
}

func TestPlanSupplyTotals(t *testing.T) {
	for pool := 0; pool <= 40; pool++ {
		for requested := 1; requested <= 25; requested++ {
			p := PlanSupply(pool, requested, true)
			if p.Cached+p.New != requested {
				t.Fatalf("PlanSupply(%d, %d) = %+v, totals %d != requested", pool, requested, p, p.Cached+p.New)
			}
			if p.Cached < 0 || p.New < 0 {
				t.Fatalf("PlanSupply(%d, %d) = %+v, negative component", pool, requested, p)
			}
			if p.Cached > pool {
				t.Fatalf("PlanSupply(%d, %d) = %+v, cached exceeds pool", pool, requested, p)
			}
			if pool >= 30 && p.New != 0 {
				t.Fatalf("PlanSupply(%d, %d) = %+v, want New == 0 for pool >= 30", pool, requested, p)
			}

			// With unchanged content the plan never exceeds the pool and
			// never generates once the pool is adequate.
			u := PlanSupply(pool, requested, false)
			if u.Cached > pool {
				t.Fatalf("PlanSupply(%d, %d, unchanged) = %+v, cached exceeds pool", pool, requested, u)
			}
			if pool >= 10 {
				if u.New != 0 {
					t.Fatalf("PlanSupply(%d, %d, unchanged) = %+v, want New == 0", pool, requested, u)
				}
				want := requested
				if want > pool {
					want = pool
				}
				if u.Cached != want {
					t.Fatalf("PlanSupply(%d, %d, unchanged) = %+v, want Cached == %d", pool, requested, u, want)
				}
			} else if u.Cached+u.New != requested {
				t.Fatalf("PlanSupply(%d, %d, unchanged) = %+v, totals %d != requested", pool, requested, u, u.Cached+u.New)
			}
		}
	}
}
