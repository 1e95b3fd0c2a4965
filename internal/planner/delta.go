package planner

import (
	"github.com/lox/idleplanner/internal/gamestate"
	"github.com/lox/idleplanner/internal/rates"
)

// deltaConditions materializes a watch set into the wait conditions the
// decision-delta minimizes over. The goal condition is always present.
func deltaConditions(s gamestate.State, w WatchSet, goal Goal) AnyOf {
	reg := s.Registry()
	var goalCond WaitCondition = UntilGoal{Goal: goal}
	if g, ok := goal.(ReachCurrency); ok {
		// Currency goals stop waits at effective currency so the
		// closing sell happens as its own zero-tick step.
		goalCond = UntilEffectiveCurrency{Target: g.Target, Policy: gamestate.SellAll()}
	}
	conds := []WaitCondition{goalCond}

	for _, ow := range w.Offers {
		conds = append(conds, UntilEffectiveCurrency{Target: ow.Cost, Policy: w.Policy})
	}
	for _, actionID := range w.Unlocks {
		a := reg.Action(actionID)
		if a == nil {
			continue
		}
		conds = append(conds, UntilSkillXP{
			Skill:    a.Skill,
			TargetXP: float64(reg.XP().XPForLevel(a.UnlockLevel)),
		})
	}
	for _, skill := range w.LevelSkills {
		if next, ok := reg.XP().NextBoundary(s.XP(skill)); ok {
			conds = append(conds, UntilSkillXP{Skill: skill, TargetXP: float64(next)})
		}
	}
	for _, actionID := range w.MasteryActions {
		if next, ok := reg.XP().NextBoundary(s.MasteryXP(actionID)); ok {
			conds = append(conds, UntilMasteryXP{Action: actionID, TargetXP: float64(next)})
		}
	}
	if w.InventoryFull {
		conds = append(conds, UntilInventoryFull{})
	}
	if w.InputsDepleted && s.Active() != "" {
		conds = append(conds, UntilInputsDepleted{Action: s.Active(), Recipe: s.Recipe()})
	}
	for _, cw := range w.Consumers {
		conds = append(conds, UntilInputsAvailable{Action: cw.Action, MinInputs: cw.MinInputs})
	}
	if w.DeathHorizon {
		conds = append(conds, UntilExpectedDeath{})
	}
	return AnyOf{Conds: conds}
}

// Delta computes the shortest tick span until something interesting
// happens under the watch set. Zero means an interaction is already
// available (goal met or a watched condition edge-triggered); +Inf
// means nothing can ever fire and the node is a dead end.
func Delta(s gamestate.State, w WatchSet, goal Goal, r rates.Rates) (float64, WaitCondition) {
	composite := deltaConditions(s, w, goal)
	cond, ticks := composite.Tightest(s, r)
	return ticks, cond
}
