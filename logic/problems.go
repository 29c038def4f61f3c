package logic

import (
	"fmt"
	"math/rand"
)

// ProblemGenerator produces arithmetic problems and candidate planet
// answers. The random source is injected so generation is reproducible
// under test.
type ProblemGenerator struct {
	cfg *GameConfig
	rng *rand.Rand
}

func NewProblemGenerator(cfg *GameConfig, rng *rand.Rand) *ProblemGenerator {
	return &ProblemGenerator{cfg: cfg, rng: rng}
}

func (g *ProblemGenerator) operand() int {
	lo := g.cfg.Problems.OperandMin
	hi := g.cfg.Problems.OperandMax
	return lo + g.rng.Intn(hi-lo+1)
}

// Problem picks an operator uniformly from {+, -, x} and two operands.
// For subtraction the larger operand is always the minuend, so the
// answer is never negative.
func (g *ProblemGenerator) Problem() Problem {
	a := g.operand()
	b := g.operand()

	switch g.rng.Intn(3) {
	case 0:
		return Problem{Text: fmt.Sprintf("%d + %d", a, b), Answer: a + b}
	case 1:
		if b > a {
			a, b = b, a
		}
		return Problem{Text: fmt.Sprintf("%d - %d", a, b), Answer: a - b}
	default:
		return Problem{Text: fmt.Sprintf("%d × %d", a, b), Answer: a * b}
	}
}

// PlanetAnswer picks the value for a new planet. liveAnswers is the
// multiset of answers of all currently live rockets; livePlanets is
// the current live planet count. With the configured probability (and
// only once enough planets are live) the value is a disguised bomb:
// a random value guaranteed to match no live rocket. Otherwise a live
// answer is picked uniformly, duplicates weighting the draw toward
// more frequent targets. With no live rockets the value is random and
// may accidentally be a bomb.
func (g *ProblemGenerator) PlanetAnswer(liveAnswers []int, livePlanets int) int {
	poolMax := g.cfg.Problems.AnswerPoolMax

	if livePlanets >= g.cfg.Problems.BombMinLivePlanets && g.rng.Float64() < g.cfg.Problems.BombProbability {
		// Resampling terminates: the live answer set is small
		// relative to the pool.
		for {
			v := g.rng.Intn(poolMax) + 1
			if !containsInt(liveAnswers, v) {
				return v
			}
		}
	}

	if len(liveAnswers) > 0 {
		return liveAnswers[g.rng.Intn(len(liveAnswers))]
	}
	return g.rng.Intn(poolMax) + 1
}

// IsBomb classifies answer against the live rocket-answer multiset.
// A planet whose answer matches no live rocket at spawn time is a bomb.
func IsBomb(answer int, liveAnswers []int) bool {
	return !containsInt(liveAnswers, answer)
}

func containsInt(vals []int, v int) bool {
	for _, x := range vals {
		if x == v {
			return true
		}
	}
	return false
}
