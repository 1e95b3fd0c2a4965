//go:build !plannerdebug

package planner

import "github.com/lox/idleplanner/internal/gamestate"

// debugAssertEdge is compiled out unless the plannerdebug tag is set.
func debugAssertEdge(from, to gamestate.State, goal Goal, dt int64) {}
