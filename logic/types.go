package logic

// Problem is an arithmetic task shown on a rocket. Immutable once created.
type Problem struct {
	Text   string `json:"text"`
	Answer int    `json:"answer"`
}

// RocketState enum
type RocketState int

const (
	RocketFalling RocketState = iota
	RocketSelected
	RocketSolved
	RocketRemoved
)

// PlanetState enum
type PlanetState int

const (
	PlanetFalling PlanetState = iota
	PlanetCorrect
	PlanetWrong
	PlanetRemoved
)

// Rocket is a falling entity carrying a math problem. Owned exclusively
// by the session's entity pool; the answer is never sent to clients.
type Rocket struct {
	ID           int         `json:"id"`
	Text         string      `json:"text"`
	Answer       int         `json:"-"`
	X            float64     `json:"x"`
	Width        float64     `json:"width"`
	FallDuration float64     `json:"fall_duration"`
	State        RocketState `json:"state"`
}

// Planet is a falling entity carrying a candidate answer. IsBomb is
// decided once at spawn time and never changes afterwards.
type Planet struct {
	ID           int         `json:"id"`
	Answer       int         `json:"answer"`
	IsBomb       bool        `json:"is_bomb"`
	X            float64     `json:"x"`
	Width        float64     `json:"width"`
	FallDuration float64     `json:"fall_duration"`
	State        PlanetState `json:"state"`
}

// ScoreState holds the per-round scoring machine. SelectedRocket is -1
// when no rocket is selected.
type ScoreState struct {
	Score          int `json:"score"`
	Streak         int `json:"streak"`
	Multiplier     int `json:"multiplier"`
	SelectedRocket int `json:"selected_rocket"`
}

// Submission is the payload handed to the leaderboard at round end.
// Score is the session-lifetime total (the store replaces it, not adds);
// SessionScore is the score of the round that just ended.
type Submission struct {
	UserID       string `json:"userId"`
	Username     string `json:"username"`
	Score        int    `json:"score"`
	Streak       int    `json:"streak"`
	Multiplier   int    `json:"multiplier"`
	SessionScore int    `json:"sessionScore"`
}

type SubmitResult struct {
	Success bool `json:"success"`
}

// ScoreSubmitter delivers final results to the leaderboard service.
// Implementations must not block indefinitely; failures are reported
// via Success=false and never interrupt the round-end flow.
type ScoreSubmitter interface {
	SubmitScore(sub Submission) SubmitResult
}

// Config structs (mirrors game_config.json)
type GameConfig struct {
	Server struct {
		TickRateMs int `json:"tick_rate_ms"`
	} `json:"server"`
	Round struct {
		DurationSec int `json:"duration_sec"`
	} `json:"round"`
	Area struct {
		Width               float64 `json:"width"`
		Padding             float64 `json:"padding"`
		GridMargin          float64 `json:"grid_margin"`
		PlaceAttempts       int     `json:"place_attempts"`
		PlaceAttemptsMobile int     `json:"place_attempts_mobile"`
		Mobile              bool    `json:"mobile"`
	} `json:"area"`
	Entities struct {
		RocketCapacity   int     `json:"rocket_capacity"`
		PlanetCapacity   int     `json:"planet_capacity"`
		RocketWidth      float64 `json:"rocket_width"`
		PlanetWidth      float64 `json:"planet_width"`
		RocketFallMinSec float64 `json:"rocket_fall_min_sec"`
		RocketFallMaxSec float64 `json:"rocket_fall_max_sec"`
		PlanetFallMinSec float64 `json:"planet_fall_min_sec"`
		PlanetFallMaxSec float64 `json:"planet_fall_max_sec"`
	} `json:"entities"`
	Spawning struct {
		InitialCount         int `json:"initial_count"`
		InitialStaggerMs     int `json:"initial_stagger_ms"`
		PlanetInitialDelayMs int `json:"planet_initial_delay_ms"`
		MaintainIntervalMs   int `json:"maintain_interval_ms"`
		SpawnStaggerMs       int `json:"spawn_stagger_ms"`
		ReplenishDelayMs     int `json:"replenish_delay_ms"`
	} `json:"spawning"`
	Problems struct {
		OperandMin         int     `json:"operand_min"`
		OperandMax         int     `json:"operand_max"`
		AnswerPoolMax      int     `json:"answer_pool_max"`
		BombProbability    float64 `json:"bomb_probability"`
		BombMinLivePlanets int     `json:"bomb_min_live_planets"`
	} `json:"problems"`
	Scoring struct {
		BasePoints       int `json:"base_points"`
		Penalty          int `json:"penalty"`
		MaxMultiplierExp int `json:"max_multiplier_exp"`
	} `json:"scoring"`
}

// DefaultGameConfig returns the tunables used when no config file is
// present. Values match the reference gameplay constants.
func DefaultGameConfig() GameConfig {
	var cfg GameConfig
	cfg.Server.TickRateMs = 100
	cfg.Round.DurationSec = 60
	cfg.Area.Width = 800
	cfg.Area.Padding = 10
	cfg.Area.GridMargin = 30
	cfg.Area.PlaceAttempts = 50
	cfg.Area.PlaceAttemptsMobile = 20
	cfg.Entities.RocketCapacity = 4
	cfg.Entities.PlanetCapacity = 4
	cfg.Entities.RocketWidth = 70
	cfg.Entities.PlanetWidth = 50
	cfg.Entities.RocketFallMinSec = 4
	cfg.Entities.RocketFallMaxSec = 6
	cfg.Entities.PlanetFallMinSec = 5
	cfg.Entities.PlanetFallMaxSec = 7
	cfg.Spawning.InitialCount = 4
	cfg.Spawning.InitialStaggerMs = 1000
	cfg.Spawning.PlanetInitialDelayMs = 1500
	cfg.Spawning.MaintainIntervalMs = 1000
	cfg.Spawning.SpawnStaggerMs = 800
	cfg.Spawning.ReplenishDelayMs = 500
	cfg.Problems.OperandMin = 1
	cfg.Problems.OperandMax = 15
	cfg.Problems.AnswerPoolMax = 50
	cfg.Problems.BombProbability = 0.3
	cfg.Problems.BombMinLivePlanets = 3
	cfg.Scoring.BasePoints = 10
	cfg.Scoring.Penalty = 5
	cfg.Scoring.MaxMultiplierExp = 4
	return cfg
}
