// Package planner implements the search core: goals, wait conditions,
// macros, the candidate enumerator, the admissible heuristic,
// decision-delta estimation, dominance pruning and the A* engine that
// ties them together into minimum-time plans.
package planner

import (
	"fmt"
	"math"

	"github.com/lox/idleplanner/internal/gamestate"
	"github.com/lox/idleplanner/internal/ids"
	"github.com/lox/idleplanner/internal/rates"
	"github.com/lox/idleplanner/internal/registry"
)

// Goal is what the caller wants the plan to reach. Goals are immutable
// and safe to share across solver runs.
type Goal interface {
	// Satisfied reports whether the state meets the goal.
	Satisfied(s gamestate.State) bool

	// Remaining is the outstanding distance in the goal's own units
	// (xp for skill goals, gold for currency goals). Zero when satisfied.
	Remaining(s gamestate.State) float64

	// ProgressPerTick is the goal-units-per-tick an activity with the
	// given flows contributes.
	ProgressPerTick(r rates.Rates) float64

	// SkillRelevant reports whether a skill participates in the goal;
	// bucketing and candidate enumeration are scoped by this.
	SkillRelevant(skill ids.SkillID) bool

	// ActivityValue ranks an activity for this goal given its flows.
	ActivityValue(action ids.ActionID, r rates.Rates) float64

	// Progress is a non-decreasing scalar along any monotone path, used
	// as the dominance store's second axis.
	Progress(s gamestate.State) float64

	// Label renders the goal for logs and plan output.
	Label() string
}

// ReachCurrency targets a raw gold balance. Remaining distance and
// progress are measured in effective currency under a sell-all policy:
// banked items are one zero-tick sell away from being gold, so a plan
// typically ends with a liquidation step.
type ReachCurrency struct {
	Target int
	value  rates.ValueModel
}

// NewReachCurrency builds a currency goal ranked by the given value
// model.
func NewReachCurrency(target int, value rates.ValueModel) ReachCurrency {
	return ReachCurrency{Target: target, value: value}
}

// Satisfied implements Goal.
func (g ReachCurrency) Satisfied(s gamestate.State) bool {
	return s.Gold() >= g.Target
}

// Remaining implements Goal.
func (g ReachCurrency) Remaining(s gamestate.State) float64 {
	return math.Max(0, float64(g.Target-s.EffectiveCurrency(gamestate.SellAll())))
}

// ProgressPerTick implements Goal.
func (g ReachCurrency) ProgressPerTick(r rates.Rates) float64 {
	return math.Max(0, g.value.Value(r))
}

// SkillRelevant implements Goal: every skill can earn, so all are
// relevant to a currency goal.
func (g ReachCurrency) SkillRelevant(ids.SkillID) bool { return true }

// ActivityValue implements Goal.
func (g ReachCurrency) ActivityValue(_ ids.ActionID, r rates.Rates) float64 {
	return g.value.Value(r)
}

// Progress implements Goal.
func (g ReachCurrency) Progress(s gamestate.State) float64 {
	return math.Min(float64(g.Target), float64(s.EffectiveCurrency(gamestate.SellAll())))
}

// Label implements Goal.
func (g ReachCurrency) Label() string { return fmt.Sprintf("reach %d gold", g.Target) }

// ReachSkillLevel targets a level in one skill. The xp threshold is
// resolved once at construction from the registry's table.
type ReachSkillLevel struct {
	Skill    ids.SkillID
	Level    int
	TargetXP float64
}

// NewReachSkillLevel builds a skill-level goal over a registry.
func NewReachSkillLevel(reg *registry.Registry, skill ids.SkillID, level int) ReachSkillLevel {
	return ReachSkillLevel{
		Skill:    skill,
		Level:    level,
		TargetXP: float64(reg.XP().XPForLevel(level)),
	}
}

// Satisfied implements Goal.
func (g ReachSkillLevel) Satisfied(s gamestate.State) bool {
	return s.XP(g.Skill) >= g.TargetXP
}

// Remaining implements Goal.
func (g ReachSkillLevel) Remaining(s gamestate.State) float64 {
	return math.Max(0, g.TargetXP-s.XP(g.Skill))
}

// ProgressPerTick implements Goal.
func (g ReachSkillLevel) ProgressPerTick(r rates.Rates) float64 {
	return r.XP(g.Skill)
}

// SkillRelevant implements Goal.
func (g ReachSkillLevel) SkillRelevant(skill ids.SkillID) bool { return skill == g.Skill }

// ActivityValue implements Goal: the activity's xp rate in the target
// skill.
func (g ReachSkillLevel) ActivityValue(_ ids.ActionID, r rates.Rates) float64 {
	return r.XP(g.Skill)
}

// Progress implements Goal.
func (g ReachSkillLevel) Progress(s gamestate.State) float64 {
	return math.Min(g.TargetXP, s.XP(g.Skill))
}

// Label implements Goal.
func (g ReachSkillLevel) Label() string {
	return fmt.Sprintf("%s to level %d", ids.DisplayName(g.Skill), g.Level)
}

// MultiSkill targets several skill levels at once. Remaining and
// Progress are sums over all sub-goals; a finished sub-goal adds zero
// to Remaining and its full target xp to Progress.
type MultiSkill struct {
	Subs []ReachSkillLevel
}

// NewMultiSkill builds a multi-skill goal.
func NewMultiSkill(subs ...ReachSkillLevel) MultiSkill {
	return MultiSkill{Subs: subs}
}

// Satisfied implements Goal.
func (g MultiSkill) Satisfied(s gamestate.State) bool {
	for _, sub := range g.Subs {
		if !sub.Satisfied(s) {
			return false
		}
	}
	return true
}

// Remaining implements Goal.
func (g MultiSkill) Remaining(s gamestate.State) float64 {
	total := 0.0
	for _, sub := range g.Subs {
		total += sub.Remaining(s)
	}
	return total
}

// ProgressPerTick implements Goal.
func (g MultiSkill) ProgressPerTick(r rates.Rates) float64 {
	total := 0.0
	for _, sub := range g.Subs {
		total += sub.ProgressPerTick(r)
	}
	return total
}

// SkillRelevant implements Goal.
func (g MultiSkill) SkillRelevant(skill ids.SkillID) bool {
	for _, sub := range g.Subs {
		if sub.Skill == skill {
			return true
		}
	}
	return false
}

// ActivityValue implements Goal: the sum of the activity's xp rates in
// every sub-goal's skill, finished sub-goals included.
func (g MultiSkill) ActivityValue(action ids.ActionID, r rates.Rates) float64 {
	total := 0.0
	for _, sub := range g.Subs {
		total += sub.ActivityValue(action, r)
	}
	return total
}

// Progress implements Goal.
func (g MultiSkill) Progress(s gamestate.State) float64 {
	total := 0.0
	for _, sub := range g.Subs {
		total += sub.Progress(s)
	}
	return total
}

// Label implements Goal.
func (g MultiSkill) Label() string {
	if len(g.Subs) == 0 {
		return "empty goal"
	}
	label := g.Subs[0].Label()
	for _, sub := range g.Subs[1:] {
		label += " and " + sub.Label()
	}
	return label
}
