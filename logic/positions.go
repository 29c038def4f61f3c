package logic

import (
	"math"
	"math/rand"
)

// PositionAllocator hands out horizontal positions for newly spawned
// entities so that simultaneously falling entities of the same width
// class do not visually overlap. The axis is discretized into grid
// cells of size width+margin; a cell can be claimed by at most one
// live entity.
type PositionAllocator struct {
	rng       *rand.Rand
	areaWidth float64
	margin    float64
	attempts  int
	claimed   map[int]bool
}

func NewPositionAllocator(areaWidth, gridMargin float64, attempts int, rng *rand.Rand) *PositionAllocator {
	if attempts < 1 {
		attempts = 1
	}
	return &PositionAllocator{
		rng:       rng,
		areaWidth: areaWidth,
		margin:    gridMargin,
		attempts:  attempts,
		claimed:   make(map[int]bool),
	}
}

func (a *PositionAllocator) cellKey(x, width float64) int {
	return int(math.Floor(x / (width + a.margin)))
}

// Allocate draws random candidate positions within
// [padding, areaWidth-width-padding] and claims the first one whose
// grid cell is free. If every attempt collides it returns a random
// position without a claim: overlap is tolerated as a degraded
// fallback rather than blocking spawn. Never fails.
func (a *PositionAllocator) Allocate(width, padding float64) float64 {
	minX := padding
	maxX := a.areaWidth - width - padding
	if maxX < minX {
		maxX = minX
	}

	for i := 0; i < a.attempts; i++ {
		x := minX + a.rng.Float64()*(maxX-minX)
		key := a.cellKey(x, width)
		if !a.claimed[key] {
			a.claimed[key] = true
			return x
		}
	}

	return minX + a.rng.Float64()*(maxX-minX)
}

// Release frees the cell covering x. Idempotent: releasing a position
// whose cell is not claimed is a no-op.
func (a *PositionAllocator) Release(x, width float64) {
	delete(a.claimed, a.cellKey(x, width))
}

// Reset drops every claim. Used on round start/end.
func (a *PositionAllocator) Reset() {
	a.claimed = make(map[int]bool)
}

// ClaimedCount reports how many cells are currently claimed.
func (a *PositionAllocator) ClaimedCount() int {
	return len(a.claimed)
}
