package logic

import (
	"math/rand"
	"strconv"
	"strings"
	"testing"
)

func newTestGenerator(seed int64, mutate func(*GameConfig)) *ProblemGenerator {
	cfg := DefaultGameConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	return NewProblemGenerator(&cfg, rand.New(rand.NewSource(seed)))
}

func evalProblemText(t *testing.T, text string) int {
	t.Helper()
	parts := strings.Fields(text)
	if len(parts) != 3 {
		t.Fatalf("unexpected problem text %q", text)
	}
	a, err := strconv.Atoi(parts[0])
	if err != nil {
		t.Fatalf("bad left operand in %q: %v", text, err)
	}
	b, err := strconv.Atoi(parts[2])
	if err != nil {
		t.Fatalf("bad right operand in %q: %v", text, err)
	}
	switch parts[1] {
	case "+":
		return a + b
	case "-":
		return a - b
	case "×":
		return a * b
	default:
		t.Fatalf("unknown operator in %q", text)
		return 0
	}
}

func TestProblemAnswerMatchesText(t *testing.T) {
	g := newTestGenerator(1, nil)
	for i := 0; i < 500; i++ {
		p := g.Problem()
		if got := evalProblemText(t, p.Text); got != p.Answer {
			t.Fatalf("problem %q: answer %d, evaluates to %d", p.Text, p.Answer, got)
		}
		if p.Answer < 0 {
			t.Fatalf("problem %q has negative answer %d", p.Text, p.Answer)
		}
	}
}

func TestProblemOperandsWithinRange(t *testing.T) {
	g := newTestGenerator(2, func(cfg *GameConfig) {
		cfg.Problems.OperandMin = 3
		cfg.Problems.OperandMax = 5
	})
	for i := 0; i < 200; i++ {
		p := g.Problem()
		parts := strings.Fields(p.Text)
		for _, idx := range []int{0, 2} {
			v, _ := strconv.Atoi(parts[idx])
			if v < 3 || v > 5 {
				t.Fatalf("operand %d in %q outside [3,5]", v, p.Text)
			}
		}
	}
}

func TestProblemDeterministicWithSeed(t *testing.T) {
	g1 := newTestGenerator(42, nil)
	g2 := newTestGenerator(42, nil)
	for i := 0; i < 50; i++ {
		p1, p2 := g1.Problem(), g2.Problem()
		if p1 != p2 {
			t.Fatalf("iteration %d: %+v != %+v with same seed", i, p1, p2)
		}
	}
}

func TestPlanetAnswerPicksFromLiveAnswers(t *testing.T) {
	g := newTestGenerator(3, func(cfg *GameConfig) {
		cfg.Problems.BombProbability = 0
	})
	live := []int{7, 12, 12, 3}
	for i := 0; i < 200; i++ {
		v := g.PlanetAnswer(live, 4)
		if !containsInt(live, v) {
			t.Fatalf("got %d, not a live answer %v", v, live)
		}
	}
}

func TestPlanetAnswerBombNeverMatchesLive(t *testing.T) {
	g := newTestGenerator(4, func(cfg *GameConfig) {
		cfg.Problems.BombProbability = 1
		cfg.Problems.BombMinLivePlanets = 0
	})
	live := []int{1, 2, 3, 4, 5}
	for i := 0; i < 200; i++ {
		v := g.PlanetAnswer(live, 4)
		if containsInt(live, v) {
			t.Fatalf("bomb value %d collides with live answers %v", v, live)
		}
		if !IsBomb(v, live) {
			t.Fatalf("value %d should classify as bomb", v)
		}
	}
}

func TestPlanetAnswerRespectsMinLivePlanets(t *testing.T) {
	g := newTestGenerator(5, func(cfg *GameConfig) {
		cfg.Problems.BombProbability = 1
		cfg.Problems.BombMinLivePlanets = 3
	})
	live := []int{9}
	// Below the threshold the bomb branch must never trigger.
	for i := 0; i < 100; i++ {
		if v := g.PlanetAnswer(live, 2); v != 9 {
			t.Fatalf("got %d below bomb threshold, want live answer 9", v)
		}
	}
}

func TestPlanetAnswerFallbackWithoutLiveRockets(t *testing.T) {
	g := newTestGenerator(6, func(cfg *GameConfig) {
		cfg.Problems.BombProbability = 0
	})
	for i := 0; i < 100; i++ {
		v := g.PlanetAnswer(nil, 0)
		if v < 1 || v > g.cfg.Problems.AnswerPoolMax {
			t.Fatalf("fallback answer %d outside [1,%d]", v, g.cfg.Problems.AnswerPoolMax)
		}
	}
}

func TestIsBomb(t *testing.T) {
	live := []int{5, 8}
	if IsBomb(5, live) || IsBomb(8, live) {
		t.Fatal("live answers must not classify as bombs")
	}
	if !IsBomb(6, live) {
		t.Fatal("absent answer must classify as bomb")
	}
	if !IsBomb(1, nil) {
		t.Fatal("any answer is a bomb when no rockets are live")
	}
}
