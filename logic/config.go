package logic

import "math"

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func clampFloat(v, minV, maxV float64) float64 {
	if math.IsNaN(v) {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// ClampGameConfig enforces hard safety bounds for session configs.
// It mutates cfg in-place so callers can accept user-provided values
// while guaranteeing sane limits.
func ClampGameConfig(cfg *GameConfig) {
	if cfg == nil {
		return
	}

	// --- server ---
	cfg.Server.TickRateMs = clampInt(cfg.Server.TickRateMs, 10, 500)

	// --- round ---
	cfg.Round.DurationSec = clampInt(cfg.Round.DurationSec, 10, 600)

	// --- area ---
	cfg.Area.Width = clampFloat(cfg.Area.Width, 200, 4000)
	cfg.Area.Padding = clampFloat(cfg.Area.Padding, 0, 100)
	cfg.Area.GridMargin = clampFloat(cfg.Area.GridMargin, 0, 200)
	cfg.Area.PlaceAttempts = clampInt(cfg.Area.PlaceAttempts, 1, 200)
	cfg.Area.PlaceAttemptsMobile = clampInt(cfg.Area.PlaceAttemptsMobile, 1, 200)

	// --- entities ---
	cfg.Entities.RocketCapacity = clampInt(cfg.Entities.RocketCapacity, 1, 16)
	cfg.Entities.PlanetCapacity = clampInt(cfg.Entities.PlanetCapacity, 1, 16)
	cfg.Entities.RocketWidth = clampFloat(cfg.Entities.RocketWidth, 10, 200)
	cfg.Entities.PlanetWidth = clampFloat(cfg.Entities.PlanetWidth, 10, 200)
	cfg.Entities.RocketFallMinSec = clampFloat(cfg.Entities.RocketFallMinSec, 1, 60)
	cfg.Entities.RocketFallMaxSec = clampFloat(cfg.Entities.RocketFallMaxSec, cfg.Entities.RocketFallMinSec, 60)
	cfg.Entities.PlanetFallMinSec = clampFloat(cfg.Entities.PlanetFallMinSec, 1, 60)
	cfg.Entities.PlanetFallMaxSec = clampFloat(cfg.Entities.PlanetFallMaxSec, cfg.Entities.PlanetFallMinSec, 60)

	// --- spawning ---
	cfg.Spawning.InitialCount = clampInt(cfg.Spawning.InitialCount, 1, 16)
	if cfg.Spawning.InitialCount > cfg.Entities.RocketCapacity {
		cfg.Spawning.InitialCount = cfg.Entities.RocketCapacity
	}
	cfg.Spawning.InitialStaggerMs = clampInt(cfg.Spawning.InitialStaggerMs, 0, 5000)
	cfg.Spawning.PlanetInitialDelayMs = clampInt(cfg.Spawning.PlanetInitialDelayMs, 0, 10000)
	cfg.Spawning.MaintainIntervalMs = clampInt(cfg.Spawning.MaintainIntervalMs, 100, 5000)
	cfg.Spawning.SpawnStaggerMs = clampInt(cfg.Spawning.SpawnStaggerMs, 0, 5000)
	cfg.Spawning.ReplenishDelayMs = clampInt(cfg.Spawning.ReplenishDelayMs, 0, 5000)

	// --- problems ---
	cfg.Problems.OperandMin = clampInt(cfg.Problems.OperandMin, 1, 100)
	cfg.Problems.OperandMax = clampInt(cfg.Problems.OperandMax, cfg.Problems.OperandMin, 100)
	cfg.Problems.AnswerPoolMax = clampInt(cfg.Problems.AnswerPoolMax, 10, 1000)
	cfg.Problems.BombProbability = clampFloat(cfg.Problems.BombProbability, 0.0, 1.0)
	cfg.Problems.BombMinLivePlanets = clampInt(cfg.Problems.BombMinLivePlanets, 0, 16)

	// --- scoring ---
	cfg.Scoring.BasePoints = clampInt(cfg.Scoring.BasePoints, 1, 1000)
	cfg.Scoring.Penalty = clampInt(cfg.Scoring.Penalty, 0, 1000)
	cfg.Scoring.MaxMultiplierExp = clampInt(cfg.Scoring.MaxMultiplierExp, 0, 10)
}
