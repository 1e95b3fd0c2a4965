//go:build plannerdebug

package planner

import (
	"fmt"

	"github.com/lox/idleplanner/internal/gamestate"
)

// debugAssertEdge validates search-edge invariants: non-negative tick
// deltas, valid child states and monotone xp on goal-relevant skills.
func debugAssertEdge(from, to gamestate.State, goal Goal, dt int64) {
	if dt < 0 {
		panic(fmt.Sprintf("negative wait delta %d", dt))
	}
	if to.Gold() < 0 {
		panic("negative gold after edge")
	}
	if to.HP() < 0 {
		panic("negative hp after edge")
	}
	for _, item := range to.Items() {
		if to.Item(item) < 0 {
			panic(fmt.Sprintf("negative inventory for %s", item))
		}
	}
	for _, skill := range to.Registry().Skills() {
		if !goal.SkillRelevant(skill) {
			continue
		}
		if to.XP(skill) < from.XP(skill) {
			panic(fmt.Sprintf("xp regressed on %s: %v -> %v", skill, from.XP(skill), to.XP(skill)))
		}
	}
}
