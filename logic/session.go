package logic

import (
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"
)

// Outcome of resolving a planet choice.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeSelectRocketFirst
	OutcomeCorrect
	OutcomeWrong
	OutcomeBomb
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSelectRocketFirst:
		return "select_rocket_first"
	case OutcomeCorrect:
		return "correct"
	case OutcomeWrong:
		return "wrong"
	case OutcomeBomb:
		return "bomb"
	default:
		return "ignored"
	}
}

// GameSession holds all mutable state of one play session: the live
// entity pools, the scoring machine and the round lifecycle. There are
// no package-level singletons; every connection (and every test) gets
// its own session.
//
// All scheduled callbacks run inside Advance while the mutex is held,
// which gives the single-threaded cooperative model the rules assume:
// expiry timers, spawn staggers and the countdown never interleave
// mid-mutation.
type GameSession struct {
	Config *GameConfig
	Mutex  sync.RWMutex

	// Identity of the player, set before the first round.
	UserID   string
	Username string
	Embedded bool

	// Submitter receives the final score at round end; OnRoundEnd is
	// the embedding-host hook (share affordance). Both may be nil.
	Submitter  ScoreSubmitter
	OnRoundEnd func(score, streak, multiplier int)

	problems    *ProblemGenerator
	rocketSlots *PositionAllocator
	planetSlots *PositionAllocator
	sched       *Scheduler

	rockets      map[int]*Rocket
	planets      map[int]*Planet
	nextRocketID int
	nextPlanetID int

	Score         ScoreState
	TotalScore    int
	TimeRemaining int
	Active        bool

	rng *rand.Rand
}

// NewGameSession builds an idle session. rng drives problem
// generation, placement and fall durations; pass a seeded source for
// reproducible behavior.
func NewGameSession(cfg *GameConfig, rng *rand.Rand) *GameSession {
	attempts := cfg.Area.PlaceAttempts
	if cfg.Area.Mobile {
		attempts = cfg.Area.PlaceAttemptsMobile
	}
	s := &GameSession{
		Config:      cfg,
		problems:    NewProblemGenerator(cfg, rng),
		rocketSlots: NewPositionAllocator(cfg.Area.Width, cfg.Area.GridMargin, attempts, rng),
		planetSlots: NewPositionAllocator(cfg.Area.Width, cfg.Area.GridMargin, attempts, rng),
		sched:       NewScheduler(),
		rockets:     make(map[int]*Rocket),
		planets:     make(map[int]*Planet),
		rng:         rng,
	}
	s.Score.Multiplier = 1
	s.Score.SelectedRocket = -1
	return s
}

// ---- round lifecycle ----

// StartRound fully resets the session and begins a new round:
// staggered initial spawns (rockets first, planets after a short delay
// so problems are visible before answers), the one-second countdown
// and the periodic maintenance tick.
func (s *GameSession) StartRound(now time.Time) {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	s.startRound(now)
}

func (s *GameSession) startRound(now time.Time) {
	s.cleanup()

	s.Score = ScoreState{Multiplier: 1, SelectedRocket: -1}
	s.TimeRemaining = s.Config.Round.DurationSec
	s.Active = true

	stagger := time.Duration(s.Config.Spawning.InitialStaggerMs) * time.Millisecond
	planetDelay := time.Duration(s.Config.Spawning.PlanetInitialDelayMs) * time.Millisecond
	for i := 0; i < s.Config.Spawning.InitialCount; i++ {
		s.sched.After(now, time.Duration(i)*stagger, s.spawnRocket)
		s.sched.After(now, planetDelay+time.Duration(i)*stagger, s.spawnPlanet)
	}

	s.sched.After(now, time.Second, s.countdownTick)
	s.sched.After(now, s.maintainInterval(), s.maintainTick)
}

// EndRound force-ends the current round and submits the result.
func (s *GameSession) EndRound(now time.Time) {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	s.endRound(true)
}

// Restart performs end-of-round cleanup without submission and
// immediately starts a fresh round.
func (s *GameSession) Restart(now time.Time) {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	s.endRound(false)
	s.startRound(now)
}

// Advance drives the session clock: every pending timed action due at
// or before now fires, in order. Called by the game loop on each tick
// and by tests directly.
func (s *GameSession) Advance(now time.Time) {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	s.sched.Advance(now)
}

func (s *GameSession) countdownTick(now time.Time) {
	if !s.Active {
		return
	}
	s.TimeRemaining--
	if s.TimeRemaining <= 0 {
		s.endRound(true)
		return
	}
	s.sched.After(now, time.Second, s.countdownTick)
}

// endRound is terminal until the next startRound. Cancelling the
// scheduler first guarantees no pending spawn or expiry from this
// round can fire later.
func (s *GameSession) endRound(submit bool) {
	if !s.Active {
		return
	}
	s.Active = false
	s.TimeRemaining = 0
	roundScore := s.Score.Score
	s.TotalScore += roundScore
	s.cleanup()

	if !submit {
		return
	}

	sub := Submission{
		UserID:       s.UserID,
		Username:     s.Username,
		Score:        s.TotalScore,
		Streak:       s.Score.Streak,
		Multiplier:   s.Score.Multiplier,
		SessionScore: roundScore,
	}
	final := s.Score
	submitter := s.Submitter
	onEnd := s.OnRoundEnd

	// Submission must never block round-end presentation; the
	// submitter itself carries a short timeout and failure is
	// logged and swallowed.
	go func() {
		if submitter != nil {
			if res := submitter.SubmitScore(sub); !res.Success {
				log.Printf("Score submission failed for user %q (score=%d)", sub.UserID, sub.Score)
			}
		}
		if onEnd != nil {
			onEnd(final.Score, final.Streak, final.Multiplier)
		}
	}()
}

// cleanup neutralizes all pending timers and force-removes every live
// entity. Removal goes through the same path as expiry and matching,
// so slot claims are always released exactly once.
func (s *GameSession) cleanup() {
	s.sched.CancelAll()
	for id := range s.rockets {
		s.removeRocket(id)
	}
	for id := range s.planets {
		s.removePlanet(id)
	}
	s.rocketSlots.Reset()
	s.planetSlots.Reset()
	s.Score.SelectedRocket = -1
}

// ---- entity pool ----

func (s *GameSession) spawnRocket(now time.Time) {
	if !s.Active || len(s.rockets) >= s.Config.Entities.RocketCapacity {
		return
	}

	p := s.problems.Problem()
	width := s.Config.Entities.RocketWidth
	x := s.rocketSlots.Allocate(width, s.Config.Area.Padding)
	fall := s.fallDuration(s.Config.Entities.RocketFallMinSec, s.Config.Entities.RocketFallMaxSec)

	id := s.nextRocketID
	s.nextRocketID++
	s.rockets[id] = &Rocket{
		ID:           id,
		Text:         p.Text,
		Answer:       p.Answer,
		X:            x,
		Width:        width,
		FallDuration: fall,
		State:        RocketFalling,
	}

	s.sched.After(now, secondsToDuration(fall), func(time.Time) {
		s.removeRocket(id)
	})
}

func (s *GameSession) spawnPlanet(now time.Time) {
	if !s.Active || len(s.planets) >= s.Config.Entities.PlanetCapacity {
		return
	}

	live := s.liveRocketAnswers()
	answer := s.problems.PlanetAnswer(live, len(s.planets))
	width := s.Config.Entities.PlanetWidth
	x := s.planetSlots.Allocate(width, s.Config.Area.Padding)
	fall := s.fallDuration(s.Config.Entities.PlanetFallMinSec, s.Config.Entities.PlanetFallMaxSec)

	id := s.nextPlanetID
	s.nextPlanetID++
	s.planets[id] = &Planet{
		ID:           id,
		Answer:       answer,
		IsBomb:       IsBomb(answer, live),
		X:            x,
		Width:        width,
		FallDuration: fall,
		State:        PlanetFalling,
	}

	s.sched.After(now, secondsToDuration(fall), func(time.Time) {
		s.removePlanet(id)
	})
}

// removeRocket is idempotent: expiry racing a match removal resolves
// to whichever fires first, the loser is a no-op. Required so a slot
// is never double-released and live counts never go negative.
func (s *GameSession) removeRocket(id int) {
	r, ok := s.rockets[id]
	if !ok {
		return
	}
	s.rocketSlots.Release(r.X, r.Width)
	r.State = RocketRemoved
	delete(s.rockets, id)
}

func (s *GameSession) removePlanet(id int) {
	p, ok := s.planets[id]
	if !ok {
		return
	}
	s.planetSlots.Release(p.X, p.Width)
	p.State = PlanetRemoved
	delete(s.planets, id)
}

func (s *GameSession) maintainTick(now time.Time) {
	if !s.Active {
		return
	}
	s.maintainRockets(now)
	s.maintainPlanets(now)
	s.sched.After(now, s.maintainInterval(), s.maintainTick)
}

// maintainRockets schedules spawns for the current deficit, staggered
// so replenishment never appears as a simultaneous burst. Each spawn
// re-checks capacity, so overlapping maintenance passes cannot
// overshoot.
func (s *GameSession) maintainRockets(now time.Time) {
	need := s.Config.Entities.RocketCapacity - len(s.rockets)
	stagger := time.Duration(s.Config.Spawning.SpawnStaggerMs) * time.Millisecond
	for i := 0; i < need; i++ {
		s.sched.After(now, time.Duration(i)*stagger, s.spawnRocket)
	}
}

func (s *GameSession) maintainPlanets(now time.Time) {
	need := s.Config.Entities.PlanetCapacity - len(s.planets)
	stagger := time.Duration(s.Config.Spawning.SpawnStaggerMs) * time.Millisecond
	for i := 0; i < need; i++ {
		s.sched.After(now, time.Duration(i)*stagger, s.spawnPlanet)
	}
}

func (s *GameSession) liveRocketAnswers() []int {
	answers := make([]int, 0, len(s.rockets))
	for _, r := range s.rockets {
		answers = append(answers, r.Answer)
	}
	return answers
}

func (s *GameSession) maintainInterval() time.Duration {
	return time.Duration(s.Config.Spawning.MaintainIntervalMs) * time.Millisecond
}

func (s *GameSession) fallDuration(minSec, maxSec float64) float64 {
	return minSec + s.rng.Float64()*(maxSec-minSec)
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}

// ---- match engine ----

// HandleSelectRocket marks the rocket selected, silently replacing any
// previous selection. Selecting a dead id is a no-op.
func (s *GameSession) HandleSelectRocket(id int) {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()

	if !s.Active {
		return
	}
	r, ok := s.rockets[id]
	if !ok {
		return
	}
	if prev, ok := s.rockets[s.Score.SelectedRocket]; ok {
		prev.State = RocketFalling
	}
	r.State = RocketSelected
	s.Score.SelectedRocket = id
}

// HandleChoosePlanet resolves the selected rocket against the chosen
// planet. The three resolving branches (correct, wrong, bomb) are the
// complete scoring rule table; every one clears the selection.
// Interactions with entities that expired mid-click are ignored.
func (s *GameSession) HandleChoosePlanet(now time.Time, planetID int) Outcome {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()

	if !s.Active {
		return OutcomeIgnored
	}
	if s.Score.SelectedRocket < 0 {
		return OutcomeSelectRocketFirst
	}
	p, pok := s.planets[planetID]
	r, rok := s.rockets[s.Score.SelectedRocket]
	if !pok || !rok {
		return OutcomeIgnored
	}

	var out Outcome
	switch {
	case p.IsBomb:
		out = OutcomeBomb
		s.applyPenalty()
		p.State = PlanetWrong
		s.removePlanet(planetID)
		r.State = RocketFalling
		s.scheduleReplenish(now, false)
	case p.Answer == r.Answer:
		out = OutcomeCorrect
		s.Score.Streak++
		s.Score.Multiplier = multiplierFor(s.Score.Streak, s.Config.Scoring.MaxMultiplierExp)
		s.Score.Score += s.Config.Scoring.BasePoints * s.Score.Multiplier
		r.State = RocketSolved
		p.State = PlanetCorrect
		s.removeRocket(r.ID)
		s.removePlanet(planetID)
		s.scheduleReplenish(now, true)
	default:
		out = OutcomeWrong
		s.applyPenalty()
		p.State = PlanetWrong
		s.removePlanet(planetID)
		r.State = RocketFalling
		s.scheduleReplenish(now, false)
	}

	s.Score.SelectedRocket = -1
	return out
}

func (s *GameSession) applyPenalty() {
	s.Score.Streak = 0
	s.Score.Multiplier = 1
	s.Score.Score -= s.Config.Scoring.Penalty
	if s.Score.Score < 0 {
		s.Score.Score = 0
	}
}

// scheduleReplenish tops the pools back up after a short delay so
// removal feedback can play out before new entities take the freed
// capacity. The periodic maintenance tick would catch up regardless.
func (s *GameSession) scheduleReplenish(now time.Time, rockets bool) {
	delay := time.Duration(s.Config.Spawning.ReplenishDelayMs) * time.Millisecond
	s.sched.After(now, delay, func(t time.Time) {
		if rockets {
			s.maintainRockets(t)
		}
		s.maintainPlanets(t)
	})
}

func multiplierFor(streak, maxExp int) int {
	if streak <= 0 {
		return 1
	}
	exp := streak - 1
	if exp > maxExp {
		exp = maxExp
	}
	return 1 << exp
}

// ---- views ----

// SessionSnapshot is the client-facing view of a session at one tick.
type SessionSnapshot struct {
	Active        bool       `json:"active"`
	TimeRemaining int        `json:"time_remaining"`
	Score         ScoreState `json:"score"`
	TotalScore    int        `json:"total_score"`
	Rockets       []Rocket   `json:"rockets"`
	Planets       []Planet   `json:"planets"`
}

// Snapshot copies the live state. Entities are sorted by id for stable
// output.
func (s *GameSession) Snapshot() SessionSnapshot {
	s.Mutex.RLock()
	defer s.Mutex.RUnlock()

	snap := SessionSnapshot{
		Active:        s.Active,
		TimeRemaining: s.TimeRemaining,
		Score:         s.Score,
		TotalScore:    s.TotalScore,
		Rockets:       make([]Rocket, 0, len(s.rockets)),
		Planets:       make([]Planet, 0, len(s.planets)),
	}
	for _, r := range s.rockets {
		snap.Rockets = append(snap.Rockets, *r)
	}
	for _, p := range s.planets {
		snap.Planets = append(snap.Planets, *p)
	}
	sort.Slice(snap.Rockets, func(i, j int) bool { return snap.Rockets[i].ID < snap.Rockets[j].ID })
	sort.Slice(snap.Planets, func(i, j int) bool { return snap.Planets[i].ID < snap.Planets[j].ID })
	return snap
}

// IsActive reports whether a round is running.
func (s *GameSession) IsActive() bool {
	s.Mutex.RLock()
	defer s.Mutex.RUnlock()
	return s.Active
}

// SetUser records the player identity used for submissions.
func (s *GameSession) SetUser(userID, username string, embedded bool) {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	s.UserID = userID
	s.Username = username
	s.Embedded = embedded
}

// LiveCounts reports the live rocket and planet counts.
func (s *GameSession) LiveCounts() (rockets, planets int) {
	s.Mutex.RLock()
	defer s.Mutex.RUnlock()
	return len(s.rockets), len(s.planets)
}
