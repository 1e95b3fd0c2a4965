package planner

import (
	"fmt"
	"strings"

	"github.com/lox/idleplanner/internal/gamestate"
	"github.com/lox/idleplanner/internal/rates"
)

// currencyBucketGranularity coarsens gold for bucket keys.
const currencyBucketGranularity = 50

// hpBucketGranularity coarsens hit points for bucket keys.
const hpBucketGranularity = 10

// invBucketGranularity coarsens bank occupancy for bucket keys.
const invBucketGranularity = 10

// point is one entry of a bucket's Pareto frontier.
type point struct {
	ticks    int64
	progress float64
}

// DominanceStore keeps a per-bucket Pareto frontier of (ticks, progress)
// points. A candidate is dominated when some frontier point got at least
// as far in no more time.
type DominanceStore struct {
	buckets map[string][]point
	prunes  int64
}

// NewDominanceStore builds an empty store.
func NewDominanceStore() *DominanceStore {
	return &DominanceStore{buckets: make(map[string][]point)}
}

// Offer checks a point against its bucket's frontier. If dominated it
// returns false; otherwise the point is inserted, evicting anything it
// dominates, and Offer returns true.
func (d *DominanceStore) Offer(bucket string, ticks int64, progress float64) bool {
	frontier := d.buckets[bucket]
	for _, p := range frontier {
		if p.ticks <= ticks && p.progress >= progress {
			d.prunes++
			return false
		}
	}
	kept := frontier[:0]
	for _, p := range frontier {
		if ticks <= p.ticks && progress >= p.progress {
			continue
		}
		kept = append(kept, p)
	}
	d.buckets[bucket] = append(kept, point{ticks: ticks, progress: progress})
	return true
}

// Prunes returns how many offers were rejected as dominated.
func (d *DominanceStore) Prunes() int64 { return d.prunes }

// FrontierSize returns the current frontier size of one bucket.
func (d *DominanceStore) FrontierSize(bucket string) int { return len(d.buckets[bucket]) }

// Buckets returns the number of distinct buckets seen.
func (d *DominanceStore) Buckets() int { return len(d.buckets) }

// exactStateKey fingerprints a state exactly: every field that can
// differ between two states lands in the key. Used by the reference
// search as a closed set when dominance pruning is off.
func exactStateKey(s gamestate.State) string {
	var b strings.Builder
	reg := s.Registry()
	fmt.Fprintf(&b, "act=%s/%d|g=%d|hp=%d", s.Active(), s.Recipe(), s.Gold(), s.HP())
	for _, skill := range reg.Skills() {
		fmt.Fprintf(&b, "|%s=%g", skill, s.XP(skill))
		for _, a := range reg.ActionsForSkill(skill) {
			if mxp := s.MasteryXP(a.ID); mxp > 0 {
				fmt.Fprintf(&b, "|%s!%g", a.ID, mxp)
			}
		}
	}
	for _, item := range s.Items() {
		fmt.Fprintf(&b, "|%s#%d", item, s.Item(item))
	}
	for _, offer := range reg.Offers() {
		if n := s.Owned(offer.ID); n > 0 {
			fmt.Fprintf(&b, "|%s*%d", offer.ID, n)
		}
	}
	return b.String()
}

// BucketKey fingerprints a state coarsely enough to merge near-identical
// search branches while keeping goal-relevant capability distinctions.
// Skills outside the goal are excluded entirely; that scoping is the
// main driver of search-space compression.
func BucketKey(s gamestate.State, goal Goal, r rates.Rates) string {
	var b strings.Builder
	reg := s.Registry()

	fmt.Fprintf(&b, "act=%s/%d", s.Active(), s.Recipe())
	for _, skill := range reg.Skills() {
		if goal.SkillRelevant(skill) {
			fmt.Fprintf(&b, "|%s=%d", skill, s.Level(skill))
		}
	}
	for _, offer := range reg.Offers() {
		if offer.Chain == "" {
			continue
		}
		if n := s.Owned(offer.ID); n > 0 {
			fmt.Fprintf(&b, "|%s*%d", offer.ID, n)
		}
	}
	fmt.Fprintf(&b, "|g=%d", s.Gold()/currencyBucketGranularity)

	if r.HPLossPerTick > 0 {
		fmt.Fprintf(&b, "|hp=%d", s.HP()/hpBucketGranularity)
	}
	if active := s.Active(); active != "" {
		a := reg.Action(active)
		if a != nil && a.Mastery != "" {
			fmt.Fprintf(&b, "|m=%d", s.MasteryLevel(active))
		}
		if a != nil && a.Consuming() {
			fmt.Fprintf(&b, "|inv=%d", s.TotalItems()/invBucketGranularity)
		}
	}
	return b.String()
}
