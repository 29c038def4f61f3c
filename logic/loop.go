package logic

import (
	"log"
	"time"
)

type InputType int

const (
	InputSetUser InputType = iota
	InputStartRound
	InputRestartRound
	InputEndRound
	InputSelectRocket
	InputChoosePlanet
)

type PlayerInput struct {
	Type     InputType
	EntityID int
	// InputSetUser payload
	UserID   string
	Username string
	Embedded bool
}

// MatchEvent reports the result of a planet choice so the transport
// can give immediate feedback instead of waiting for the next
// snapshot.
type MatchEvent struct {
	Outcome  Outcome    `json:"outcome"`
	PlanetID int        `json:"planet_id"`
	Score    ScoreState `json:"score"`
}

// GameLoop drives one session on a single goroutine: player inputs,
// the scheduler clock and snapshot publication all interleave here and
// nowhere else.
type GameLoop struct {
	Session      *GameSession
	InputChan    chan PlayerInput
	SnapshotChan chan SessionSnapshot
	EventChan    chan MatchEvent
	StopChan     chan bool
}

func NewGameLoop(session *GameSession) *GameLoop {
	return &GameLoop{
		Session:      session,
		InputChan:    make(chan PlayerInput, 64),
		SnapshotChan: make(chan SessionSnapshot, 1),
		EventChan:    make(chan MatchEvent, 16),
		StopChan:     make(chan bool),
	}
}

func (gl *GameLoop) Run() {
	ticker := time.NewTicker(time.Duration(gl.Session.Config.Server.TickRateMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case input := <-gl.InputChan:
			gl.handleInput(input)

		case now := <-ticker.C:
			gl.Session.Advance(now)

			// Non-blocking send: skip the frame if the network
			// side is busy.
			select {
			case gl.SnapshotChan <- gl.Session.Snapshot():
			default:
			}

		case <-gl.StopChan:
			log.Println("GameLoop stopped.")
			return
		}
	}
}

func (gl *GameLoop) handleInput(input PlayerInput) {
	s := gl.Session
	now := time.Now()

	switch input.Type {
	case InputSetUser:
		s.SetUser(input.UserID, input.Username, input.Embedded)
	case InputStartRound:
		s.StartRound(now)
	case InputRestartRound:
		s.Restart(now)
	case InputEndRound:
		s.EndRound(now)
	case InputSelectRocket:
		s.HandleSelectRocket(input.EntityID)
	case InputChoosePlanet:
		out := s.HandleChoosePlanet(now, input.EntityID)
		select {
		case gl.EventChan <- MatchEvent{Outcome: out, PlanetID: input.EntityID, Score: s.Snapshot().Score}:
		default:
		}
	}
}
