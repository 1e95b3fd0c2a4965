package registry

import (
	"fmt"
	"math"
	"sort"
)

// XPTable maps accumulated xp to levels via a fixed monotone threshold
// array. thresholds[i] is the xp required to hold level i+1, so
// thresholds[0] is always zero. The same table shape serves skill levels
// and per-action mastery levels.
type XPTable struct {
	thresholds []int64
}

// NewXPTable builds a table from explicit thresholds. The array must
// start at zero and be strictly increasing after that.
func NewXPTable(thresholds []int64) (*XPTable, error) {
	if len(thresholds) == 0 || thresholds[0] != 0 {
		return nil, fmt.Errorf("xp table must start at zero")
	}
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i] <= thresholds[i-1] {
			return nil, fmt.Errorf("xp table not strictly increasing at level %d", i+1)
		}
	}
	cp := make([]int64, len(thresholds))
	copy(cp, thresholds)
	return &XPTable{thresholds: cp}, nil
}

// StandardTable generates the conventional exponential curve used by the
// bundled realms, up to maxLevel.
func StandardTable(maxLevel int) *XPTable {
	thresholds := make([]int64, maxLevel)
	acc := 0.0
	for l := 2; l <= maxLevel; l++ {
		acc += math.Floor(float64(l-1) + 300*math.Pow(2, float64(l-1)/7.0))
		thresholds[l-1] = int64(math.Floor(acc / 4))
	}
	t, err := NewXPTable(thresholds)
	if err != nil {
		panic(err)
	}
	return t
}

// MaxLevel returns the highest attainable level.
func (t *XPTable) MaxLevel() int { return len(t.thresholds) }

// LevelFor returns the level held at the given xp.
func (t *XPTable) LevelFor(xp float64) int {
	if xp < 0 {
		return 1
	}
	// First threshold strictly above xp; the level is its index.
	i := sort.Search(len(t.thresholds), func(i int) bool {
		return float64(t.thresholds[i]) > xp
	})
	if i == 0 {
		return 1
	}
	return i
}

// XPForLevel returns the xp threshold for holding the given level.
// Levels past the table's end clamp to the final threshold.
func (t *XPTable) XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	if level > len(t.thresholds) {
		level = len(t.thresholds)
	}
	return t.thresholds[level-1]
}

// NextBoundary returns the next level threshold strictly above xp, or
// false if xp is at or beyond the final threshold.
func (t *XPTable) NextBoundary(xp float64) (int64, bool) {
	i := sort.Search(len(t.thresholds), func(i int) bool {
		return float64(t.thresholds[i]) > xp
	})
	if i >= len(t.thresholds) {
		return 0, false
	}
	return t.thresholds[i], true
}
