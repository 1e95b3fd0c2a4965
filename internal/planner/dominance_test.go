package planner

import (
	"testing"

	"github.com/lox/idleplanner/internal/gamestate"
	"github.com/lox/idleplanner/internal/rates"
	"github.com/lox/idleplanner/internal/registry"
)

func TestDominanceOffer(t *testing.T) {
	d := NewDominanceStore()

	if !d.Offer("b", 100, 50) {
		t.Fatal("first point must insert")
	}
	// Slower and no further: dominated.
	if d.Offer("b", 120, 50) {
		t.Fatal("slower equal-progress point must be dominated")
	}
	if d.Offer("b", 100, 40) {
		t.Fatal("equal-time lower-progress point must be dominated")
	}
	// Further in more time: incomparable, joins the frontier.
	if !d.Offer("b", 120, 80) {
		t.Fatal("incomparable point must insert")
	}
	if d.FrontierSize("b") != 2 {
		t.Fatalf("frontier size: got %d want 2", d.FrontierSize("b"))
	}

	// Dominates both existing points: evicts them.
	if !d.Offer("b", 90, 90) {
		t.Fatal("dominating point must insert")
	}
	if d.FrontierSize("b") != 1 {
		t.Fatalf("frontier after eviction: got %d want 1", d.FrontierSize("b"))
	}

	// Separate buckets never interact.
	if !d.Offer("other", 1000, 0) {
		t.Fatal("fresh bucket must accept any point")
	}
	if d.Prunes() != 2 {
		t.Fatalf("prune count: got %d want 2", d.Prunes())
	}
}

func TestBucketKeyScopedToGoal(t *testing.T) {
	reg := registry.Fixture()
	goal := NewReachSkillLevel(reg, registry.SkillWoodcutting, 20)

	a := gamestate.New(reg)
	// Mining xp is irrelevant to a woodcutting goal: same bucket.
	b := a.WithXPDelta(registry.SkillMining, 5000)
	if BucketKey(a, goal, rates.Rates{}) != BucketKey(b, goal, rates.Rates{}) {
		t.Fatal("irrelevant skill levels must not split buckets")
	}

	// Woodcutting level changes the bucket.
	c := a.WithXPDelta(registry.SkillWoodcutting, float64(reg.XP().XPForLevel(10)))
	if BucketKey(a, goal, rates.Rates{}) == BucketKey(c, goal, rates.Rates{}) {
		t.Fatal("relevant skill levels must split buckets")
	}

	// Gold moves in coarse steps.
	d := a.WithGoldDelta(10)
	if BucketKey(a, goal, rates.Rates{}) != BucketKey(d, goal, rates.Rates{}) {
		t.Fatal("gold within one granule must not split buckets")
	}
	e := a.WithGoldDelta(500)
	if BucketKey(a, goal, rates.Rates{}) == BucketKey(e, goal, rates.Rates{}) {
		t.Fatal("gold across granules must split buckets")
	}

	// HP only enters the key for hp-losing activities.
	hurt := a.WithHPSet(40)
	if BucketKey(a, goal, rates.Rates{}) != BucketKey(hurt, goal, rates.Rates{}) {
		t.Fatal("hp must not split buckets without hp loss")
	}
	loss := rates.Rates{HPLossPerTick: 0.1}
	if BucketKey(a, goal, loss) == BucketKey(hurt, goal, loss) {
		t.Fatal("hp must split buckets under hp loss")
	}
}
