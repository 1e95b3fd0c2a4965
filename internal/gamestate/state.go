// Package gamestate defines the immutable game state value the planner
// searches over, plus the zero-tick interactions that transform it.
// States are persistent values: every mutator returns a fresh State and
// never touches the receiver, so search nodes can share ancestors freely.
package gamestate

import (
	"fmt"
	"sort"

	"github.com/lox/idleplanner/internal/ids"
	"github.com/lox/idleplanner/internal/registry"
)

// DefaultCapacity is the bank size used when a snapshot does not set one.
const DefaultCapacity = 20

// DefaultMaxHP is the hit point cap used when a snapshot does not set one.
const DefaultMaxHP = 100

// SkillState is one skill's progress: raw xp plus per-action mastery xp.
type SkillState struct {
	XP      float64
	Mastery map[ids.ActionID]float64
}

// State is a deeply immutable snapshot of the player. The zero value is
// not usable; construct via New or FromSnapshot.
type State struct {
	reg *registry.Registry

	gold     int
	skills   map[ids.SkillID]SkillState
	inv      map[ids.ItemID]int
	capacity int
	owned    map[ids.OfferID]int

	active ids.ActionID
	recipe int

	hp    int
	maxHP int
}

// Option mutates the initial state during construction.
type Option func(*State)

// WithGold sets the starting gold.
func WithGold(gold int) Option { return func(s *State) { s.gold = gold } }

// WithCapacity sets the bank capacity.
func WithCapacity(capacity int) Option { return func(s *State) { s.capacity = capacity } }

// WithHP sets current and max hit points.
func WithHP(hp, maxHP int) Option {
	return func(s *State) { s.hp, s.maxHP = hp, maxHP }
}

// WithSkillXP sets a skill's starting xp.
func WithSkillXP(skill ids.SkillID, xp float64) Option {
	return func(s *State) {
		ss := s.skills[skill]
		ss.XP = xp
		s.skills[skill] = ss
	}
}

// WithItem seeds the inventory with a stack.
func WithItem(item ids.ItemID, qty int) Option {
	return func(s *State) { s.inv[item] = qty }
}

// WithOwned seeds an owned offer count.
func WithOwned(offer ids.OfferID, count int) Option {
	return func(s *State) { s.owned[offer] = count }
}

// WithActive selects the starting activity.
func WithActive(action ids.ActionID) Option {
	return func(s *State) { s.active = action }
}

// New constructs an initial state over a frozen registry.
func New(reg *registry.Registry, opts ...Option) State {
	s := State{
		reg:      reg,
		skills:   make(map[ids.SkillID]SkillState),
		inv:      make(map[ids.ItemID]int),
		owned:    make(map[ids.OfferID]int),
		capacity: DefaultCapacity,
		hp:       DefaultMaxHP,
		maxHP:    DefaultMaxHP,
	}
	for _, opt := range opts {
		opt(&s)
	}
	for item, qty := range s.inv {
		if qty == 0 {
			delete(s.inv, item)
		}
	}
	return s
}

// FromSnapshot builds an initial state from a parsed save snapshot.
func FromSnapshot(reg *registry.Registry, snap *registry.SnapshotConfig) (State, error) {
	opts := []Option{WithGold(snap.Gold)}
	if snap.Capacity > 0 {
		opts = append(opts, WithCapacity(snap.Capacity))
	}
	if snap.MaxHP > 0 {
		hp := snap.HP
		if hp <= 0 {
			hp = snap.MaxHP
		}
		opts = append(opts, WithHP(hp, snap.MaxHP))
	}
	for _, sk := range snap.Skills {
		skill, err := ids.ParseSkillID(sk.ID)
		if err != nil {
			return State{}, err
		}
		opts = append(opts, WithSkillXP(skill, sk.XP))
	}
	for _, st := range snap.Inventory {
		item, err := ids.ParseItemID(st.Item)
		if err != nil {
			return State{}, err
		}
		opts = append(opts, WithItem(item, st.Qty))
	}
	for _, ow := range snap.Owned {
		offer, err := ids.ParseOfferID(ow.Offer)
		if err != nil {
			return State{}, err
		}
		count := ow.Count
		if count == 0 {
			count = 1
		}
		opts = append(opts, WithOwned(offer, count))
	}
	s := New(reg, opts...)
	if snap.Active != "" {
		action, err := ids.ParseActionID(snap.Active)
		if err != nil {
			return State{}, err
		}
		if !s.Unlocked(action) {
			return State{}, fmt.Errorf("snapshot active action %s is locked", action)
		}
		s.active = action
		s.recipe = snap.Recipe
	}
	return s, nil
}

// Registry returns the frozen registry this state was built over.
func (s State) Registry() *registry.Registry { return s.reg }

// Gold returns the gold balance.
func (s State) Gold() int { return s.gold }

// Capacity returns the bank capacity.
func (s State) Capacity() int { return s.capacity }

// HP returns current hit points.
func (s State) HP() int { return s.hp }

// MaxHP returns the hit point cap.
func (s State) MaxHP() int { return s.maxHP }

// Active returns the selected activity, empty if idle.
func (s State) Active() ids.ActionID { return s.active }

// Recipe returns the selected recipe index for the active activity.
func (s State) Recipe() int { return s.recipe }

// XP returns a skill's accumulated xp.
func (s State) XP(skill ids.SkillID) float64 { return s.skills[skill].XP }

// Level returns a skill's current level.
func (s State) Level(skill ids.SkillID) int {
	return s.reg.XP().LevelFor(s.skills[skill].XP)
}

// MasteryXP returns the mastery xp accumulated on one action.
func (s State) MasteryXP(action ids.ActionID) float64 {
	return s.skills[action.Skill()].Mastery[action]
}

// MasteryLevel returns the mastery level of one action.
func (s State) MasteryLevel(action ids.ActionID) int {
	return s.reg.XP().LevelFor(s.MasteryXP(action))
}

// Item returns the held count of an item.
func (s State) Item(item ids.ItemID) int { return s.inv[item] }

// TotalItems returns the total bank occupancy in units.
func (s State) TotalItems() int {
	total := 0
	for _, qty := range s.inv {
		total += qty
	}
	return total
}

// InventoryFull reports whether the bank is at or over capacity.
func (s State) InventoryFull() bool { return s.TotalItems() >= s.capacity }

// Items returns held item ids sorted, for deterministic iteration.
func (s State) Items() []ids.ItemID {
	out := make([]ids.ItemID, 0, len(s.inv))
	for item := range s.inv {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Owned returns the owned count of a shop offer.
func (s State) Owned(offer ids.OfferID) int { return s.owned[offer] }

// ChainTier returns the highest contiguously owned tier in a chain.
func (s State) ChainTier(chain string) int {
	tier := 0
	for _, offer := range s.reg.ChainOffers(chain) {
		if s.owned[offer.ID] == 0 {
			break
		}
		tier = offer.Tier
	}
	return tier
}

// Unlocked reports whether an action is currently selectable: the skill
// level meets the unlock threshold and any gating offer is owned.
func (s State) Unlocked(action ids.ActionID) bool {
	a := s.reg.Action(action)
	if a == nil {
		return false
	}
	if s.Level(a.Skill) < a.UnlockLevel {
		return false
	}
	if a.RequiresOffer != "" && s.owned[a.RequiresOffer] == 0 {
		return false
	}
	return true
}

// UnlockedActions returns the currently unlocked actions of a skill in
// registry order.
func (s State) UnlockedActions(skill ids.SkillID) []*registry.Action {
	var out []*registry.Action
	for _, a := range s.reg.ActionsForSkill(skill) {
		if s.Unlocked(a.ID) {
			out = append(out, a)
		}
	}
	return out
}

// clone returns a shallow copy sharing all maps with the receiver. The
// copy-on-write helpers below replace individual maps before mutation.
func (s State) clone() State { return s }

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// WithGoldDelta returns a state with gold adjusted. Negative results are
// a programmer error.
func (s State) WithGoldDelta(delta int) State {
	next := s.clone()
	next.gold += delta
	if next.gold < 0 {
		panic(fmt.Sprintf("gold underflow: %d%+d", s.gold, delta))
	}
	return next
}

// WithXPDelta returns a state with skill xp increased. Negative deltas
// are a programmer error; xp never regresses.
func (s State) WithXPDelta(skill ids.SkillID, delta float64) State {
	if delta < 0 {
		panic(fmt.Sprintf("negative xp delta %v for %s", delta, skill))
	}
	if delta == 0 {
		return s
	}
	next := s.clone()
	next.skills = cloneMap(s.skills)
	ss := next.skills[skill]
	ss.XP += delta
	next.skills[skill] = ss
	return next
}

// WithMasteryDelta returns a state with mastery xp added to one action.
func (s State) WithMasteryDelta(action ids.ActionID, delta float64) State {
	if delta < 0 {
		panic(fmt.Sprintf("negative mastery delta %v for %s", delta, action))
	}
	if delta == 0 {
		return s
	}
	skill := action.Skill()
	next := s.clone()
	next.skills = cloneMap(s.skills)
	ss := next.skills[skill]
	ss.Mastery = cloneMap(ss.Mastery)
	ss.Mastery[action] += delta
	next.skills[skill] = ss
	return next
}

// WithItemDelta returns a state with an item count adjusted. Driving a
// count negative is a programmer error.
func (s State) WithItemDelta(item ids.ItemID, delta int) State {
	if delta == 0 {
		return s
	}
	next := s.clone()
	next.inv = cloneMap(s.inv)
	qty := next.inv[item] + delta
	if qty < 0 {
		panic(fmt.Sprintf("inventory underflow for %s: %d%+d", item, s.inv[item], delta))
	}
	if qty == 0 {
		delete(next.inv, item)
	} else {
		next.inv[item] = qty
	}
	return next
}

// WithOwnedDelta returns a state with an offer's owned count adjusted,
// without touching gold. Used for hypothetical what-if rate queries;
// purchases go through the Buy interaction.
func (s State) WithOwnedDelta(offer ids.OfferID, delta int) State {
	next := s.clone()
	next.owned = cloneMap(s.owned)
	count := next.owned[offer] + delta
	if count < 0 {
		panic(fmt.Sprintf("owned underflow for %s", offer))
	}
	next.owned[offer] = count
	return next
}

// WithHPSet returns a state with hit points set, clamped to [0, max].
func (s State) WithHPSet(hp int) State {
	next := s.clone()
	if hp < 0 {
		hp = 0
	}
	if hp > s.maxHP {
		hp = s.maxHP
	}
	next.hp = hp
	return next
}
