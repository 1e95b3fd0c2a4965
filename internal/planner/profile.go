package planner

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Profile captures search instrumentation for one solve call.
type Profile struct {
	ExpandedNodes   int64
	EnqueuedNodes   int64
	PoppedNodes     int64
	DominancePrunes int64
	ZeroRateNodes   int64
	QueueHighWater  int
	MacroTriggers   map[string]int64
	WallClock       time.Duration
}

// recordMacro bumps a macro's trigger counter.
func (p *Profile) recordMacro(label string) {
	if p.MacroTriggers == nil {
		p.MacroTriggers = make(map[string]int64)
	}
	p.MacroTriggers[label]++
}

// String renders the profile as a compact one-liner for logs.
func (p Profile) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "expanded=%d enqueued=%d popped=%d pruned=%d zero_rate=%d queue_peak=%d wall=%s",
		p.ExpandedNodes, p.EnqueuedNodes, p.PoppedNodes, p.DominancePrunes,
		p.ZeroRateNodes, p.QueueHighWater, p.WallClock)
	if len(p.MacroTriggers) > 0 {
		labels := make([]string, 0, len(p.MacroTriggers))
		for label := range p.MacroTriggers {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			fmt.Fprintf(&b, " macro[%s]=%d", label, p.MacroTriggers[label])
		}
	}
	return b.String()
}

// Progress is emitted to the engine's progress callback during long
// solves.
type Progress struct {
	Expanded int64
	Enqueued int64
	QueueLen int
	BestF    float64
}
