package planner

import (
	"container/heap"
	"context"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/idleplanner/internal/gamestate"
	"github.com/lox/idleplanner/internal/rates"
	"github.com/lox/idleplanner/internal/registry"
)

// FailureKind classifies an unsuccessful solve.
type FailureKind string

const (
	FailureNone       FailureKind = ""
	FailureNodeLimit  FailureKind = "node_limit"
	FailureQueueLimit FailureKind = "queue_limit"
	FailureQueueEmpty FailureKind = "queue_empty"
	FailureZeroRate   FailureKind = "zero_rate"
	FailureCancelled  FailureKind = "cancelled"
)

// Options tune one solver. The zero value is usable; defaults are
// applied in NewSolver.
type Options struct {
	MaxExpandedNodes int
	MaxQueueSize     int
	Enumerator       Config

	// Value overrides the default vendor-sell value model.
	Value rates.ValueModel

	// DisableDominance turns off Pareto pruning; used by reference
	// searches that validate pruning preserves optimality.
	DisableDominance bool

	Logger *log.Logger
	Clock  quartz.Clock

	// Progress, when set, is invoked every ProgressEvery expansions.
	Progress      func(Progress)
	ProgressEvery int
}

// DefaultMaxExpandedNodes bounds search effort per solve.
const DefaultMaxExpandedNodes = 200_000

// DefaultMaxQueueSize bounds the node arena per solve.
const DefaultMaxQueueSize = 500_000

// Result is the outcome of one solve call.
type Result struct {
	Plan          *Plan
	TerminalState *gamestate.State

	Failure      FailureKind
	BestProgress float64

	Profile Profile
}

// Success reports whether a plan was found.
func (r Result) Success() bool { return r.Failure == FailureNone }

// Solver runs A* searches over game states. A Solver is cheap; build
// one per goal or reuse one sequentially. Concurrent Solve calls need
// separate Solvers (they share only the frozen registry).
type Solver struct {
	reg  *registry.Registry
	opts Options
}

// NewSolver builds a solver over a frozen registry.
func NewSolver(reg *registry.Registry, opts Options) *Solver {
	if opts.MaxExpandedNodes <= 0 {
		opts.MaxExpandedNodes = DefaultMaxExpandedNodes
	}
	if opts.MaxQueueSize <= 0 {
		opts.MaxQueueSize = DefaultMaxQueueSize
	}
	if opts.Enumerator == (Config{}) {
		opts.Enumerator = DefaultConfig()
	}
	if opts.Value == nil {
		opts.Value = rates.NewVendorSell(reg)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = 1000
	}
	return &Solver{reg: reg, opts: opts}
}

// node is a search-graph vertex. Nodes live in the run's arena; parent
// references are arena indices, never pointers.
type node struct {
	state        gamestate.State
	ticks        int64
	interactions int32
	deaths       int
	parent       int32
	step         Step
	h            float64
	seq          int64
}

// run owns all per-solve mutable state, keeping concurrent Solve calls
// on separate Solvers fully independent.
type run struct {
	solver *Solver
	goal   Goal

	model *rates.Model
	heur  *Heuristic
	enum  *Enumerator
	exp   *Expander
	dom   *DominanceStore

	arena []node
	open  openHeap
	seq   int64

	// visited is the exact-state closed set used only when dominance
	// pruning is disabled; duplicate elimination alone keeps the
	// reference search finite without affecting optimality.
	visited map[string]int64

	profile Profile
	best    float64
}

// openHeap orders arena indices by f = ticks + h, breaking ties toward
// lower ticks, then fewer interactions, then FIFO creation order.
type openHeap struct {
	arena *[]node
	items []int32
}

func (h openHeap) Len() int { return len(h.items) }

func (h openHeap) Less(i, j int) bool {
	a, b := &(*h.arena)[h.items[i]], &(*h.arena)[h.items[j]]
	fa, fb := float64(a.ticks)+a.h, float64(b.ticks)+b.h
	if fa != fb {
		return fa < fb
	}
	if a.ticks != b.ticks {
		return a.ticks < b.ticks
	}
	if a.interactions != b.interactions {
		return a.interactions < b.interactions
	}
	return a.seq < b.seq
}

func (h openHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *openHeap) Push(x any) { h.items = append(h.items, x.(int32)) }

func (h *openHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}

// Solve searches for a minimum-time plan from the initial state to the
// goal. The context is the cancellation token, checked once per loop
// iteration.
func (s *Solver) Solve(ctx context.Context, initial gamestate.State, goal Goal) Result {
	model := rates.NewModel(s.reg)
	heur := NewHeuristic(model, s.opts.Value)
	r := &run{
		solver: s,
		goal:   goal,
		model:  model,
		heur:   heur,
		enum:   NewEnumerator(model, s.opts.Value, heur, s.opts.Enumerator),
		exp:    NewExpander(model, heur),
		dom:    NewDominanceStore(),
	}
	r.open.arena = &r.arena

	start := s.opts.Clock.Now()
	result := r.search(ctx, initial)
	result.Profile = r.profile
	result.Profile.DominancePrunes = r.dom.Prunes()
	result.Profile.WallClock = s.opts.Clock.Since(start)
	result.BestProgress = r.best

	if result.Success() {
		s.opts.Logger.Debug("solve finished",
			"goal", goal.Label(),
			"ticks", result.Plan.TotalTicks,
			"profile", result.Profile.String())
	} else {
		s.opts.Logger.Debug("solve failed",
			"goal", goal.Label(),
			"reason", string(result.Failure),
			"profile", result.Profile.String())
	}
	return result
}

func (r *run) search(ctx context.Context, initial gamestate.State) Result {
	if r.goal.Satisfied(initial) {
		plan := Compress(Plan{})
		return Result{Plan: &plan, TerminalState: &initial}
	}

	h0 := r.heur.Estimate(initial, r.goal)
	if math.IsInf(h0, 1) {
		r.profile.ZeroRateNodes++
		return Result{Failure: FailureZeroRate}
	}
	root := node{state: initial, parent: -1, h: h0, seq: r.nextSeq()}
	r.arena = append(r.arena, root)
	heap.Push(&r.open, int32(0))
	r.profile.EnqueuedNodes++

	for r.open.Len() > 0 {
		select {
		case <-ctx.Done():
			return Result{Failure: FailureCancelled}
		default:
		}

		if r.profile.ExpandedNodes >= int64(r.solver.opts.MaxExpandedNodes) {
			return Result{Failure: FailureNodeLimit}
		}

		idx := heap.Pop(&r.open).(int32)
		r.profile.PoppedNodes++
		cur := r.arena[idx]
		r.best = math.Max(r.best, r.goal.Progress(cur.state))

		if r.goal.Satisfied(cur.state) {
			return r.finish(idx)
		}

		r.profile.ExpandedNodes++
		r.emitProgress(cur)

		if ok, failure := r.expand(idx); !ok {
			return Result{Failure: failure}
		}
	}
	return Result{Failure: FailureQueueEmpty}
}

// expand generates all edges out of one node. Returns false with a
// failure kind when a hard budget trips.
func (r *run) expand(idx int32) (bool, FailureKind) {
	cur := r.arena[idx]
	c := r.enum.Enumerate(cur.state, r.goal)
	interactionsGenerated := false

	offerInteraction := func(in gamestate.Interaction) bool {
		if !in.Available(cur.state) {
			return true
		}
		child := node{
			state:        in.Apply(cur.state),
			ticks:        cur.ticks,
			interactions: cur.interactions + 1,
			deaths:       cur.deaths,
			parent:       idx,
			step:         InteractionStep{Interaction: in},
		}
		interactionsGenerated = true
		return r.offer(child)
	}

	for _, action := range c.Switchable {
		if action == cur.state.Active() {
			continue
		}
		if !offerInteraction(gamestate.Switch{Action: action}) {
			return false, FailureQueueLimit
		}
	}
	for _, offer := range c.Upgrades {
		if !offerInteraction(gamestate.Buy{Offer: offer}) {
			return false, FailureQueueLimit
		}
	}
	if c.EmitSell {
		if !offerInteraction(gamestate.Sell{Policy: c.SellPolicy}) {
			return false, FailureQueueLimit
		}
	}

	// One wait edge, sized by the tightest watched condition.
	activeRates := r.model.ForActive(cur.state)
	dt, cond := Delta(cur.state, c.Watch, r.goal, activeRates)
	switch {
	case math.IsInf(dt, 1):
		// Nothing can fire; interactions (if any) carry the branch.
	case dt == 0:
		// Something is already edge-triggered; interactions handle it,
		// and with none available the node is a dead end, not a loop.
		if !interactionsGenerated {
			r.solver.opts.Logger.Debug("dead end: zero delta with no interactions",
				"ticks", cur.ticks, "active", string(cur.state.Active()))
		}
	case dt > 0:
		advanced, deaths := advance(cur.state, activeRates, int64(dt))
		debugAssertEdge(cur.state, advanced, r.goal, int64(dt))
		child := node{
			state:        advanced,
			ticks:        cur.ticks + int64(dt),
			interactions: cur.interactions,
			deaths:       cur.deaths + deaths,
			parent:       idx,
			step:         WaitStep{Ticks: int64(dt), Condition: cond},
		}
		if !r.offer(child) {
			return false, FailureQueueLimit
		}
	}

	for _, m := range c.Macros {
		exp, ok := r.exp.Expand(cur.state, m)
		if !ok || exp.Ticks <= 0 {
			continue
		}
		debugAssertEdge(cur.state, exp.State, r.goal, exp.Ticks)
		r.profile.recordMacro(m.Label())
		extra := int32(0)
		if exp.Switched != "" {
			extra = 1
		}
		child := node{
			state:        exp.State,
			ticks:        cur.ticks + exp.Ticks,
			interactions: cur.interactions + extra,
			deaths:       cur.deaths + exp.Deaths,
			parent:       idx,
			step: MacroStep{
				Macro:     m,
				Ticks:     exp.Ticks,
				Condition: exp.Wait,
				Switched:  exp.Switched,
			},
		}
		if !r.offer(child) {
			return false, FailureQueueLimit
		}
	}
	return true, FailureNone
}

// offer runs a child through the heuristic and dominance store and
// enqueues it if it survives. Returns false when the arena is full.
func (r *run) offer(child node) bool {
	child.h = r.heur.Estimate(child.state, r.goal)
	if math.IsInf(child.h, 1) {
		r.profile.ZeroRateNodes++
		return true
	}

	if r.solver.opts.DisableDominance {
		if r.visited == nil {
			r.visited = make(map[string]int64)
		}
		key := exactStateKey(child.state)
		if prev, ok := r.visited[key]; ok && prev <= child.ticks {
			return true
		}
		r.visited[key] = child.ticks
	} else {
		bucket := BucketKey(child.state, r.goal, r.model.ForActive(child.state))
		progress := r.goal.Progress(child.state)
		if !r.dom.Offer(bucket, child.ticks, progress) {
			return true
		}
	}

	if len(r.arena) >= r.solver.opts.MaxQueueSize {
		return false
	}
	child.seq = r.nextSeq()
	r.arena = append(r.arena, child)
	heap.Push(&r.open, int32(len(r.arena)-1))
	r.profile.EnqueuedNodes++
	if r.open.Len() > r.profile.QueueHighWater {
		r.profile.QueueHighWater = r.open.Len()
	}
	return true
}

// finish reconstructs the path from a goal node by walking parent
// indices, compresses it and assembles the result.
func (r *run) finish(idx int32) Result {
	goalNode := r.arena[idx]

	var steps []Step
	for i := idx; i >= 0; i = r.arena[i].parent {
		if r.arena[i].step != nil {
			steps = append(steps, r.arena[i].step)
		}
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}

	plan := Compress(Plan{
		Steps:            steps,
		TotalTicks:       goalNode.ticks,
		InteractionCount: int(goalNode.interactions),
		ExpectedDeaths:   goalNode.deaths,
		ExpandedNodes:    r.profile.ExpandedNodes,
		EnqueuedNodes:    r.profile.EnqueuedNodes,
	})
	return Result{Plan: &plan, TerminalState: &goalNode.state}
}

func (r *run) nextSeq() int64 {
	r.seq++
	return r.seq
}

func (r *run) emitProgress(cur node) {
	opts := r.solver.opts
	if opts.Progress == nil || r.profile.ExpandedNodes%int64(opts.ProgressEvery) != 0 {
		return
	}
	opts.Progress(Progress{
		Expanded: r.profile.ExpandedNodes,
		Enqueued: r.profile.EnqueuedNodes,
		QueueLen: r.open.Len(),
		BestF:    float64(cur.ticks) + cur.h,
	})
}
