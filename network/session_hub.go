package network

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"star_math_server/logic"
)

// SessionHub owns the set of connected clients. Every client plays its
// own single-player session, so the hub's job is lifecycle: start the
// loop on register, stop it on unregister, and pump snapshots and
// match events out to the socket.
type SessionHub struct {
	Config     *logic.GameConfig
	Submitter  logic.ScoreSubmitter
	Clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	Mutex      sync.RWMutex
}

func NewSessionHub(cfg *logic.GameConfig, submitter logic.ScoreSubmitter) *SessionHub {
	return &SessionHub{
		Config:     cfg,
		Submitter:  submitter,
		Clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// NewRand mints an independent seeded source per session.
func (h *SessionHub) NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func (h *SessionHub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.Mutex.Lock()
			h.Clients[client] = true
			count := len(h.Clients)
			h.Mutex.Unlock()

			go client.Loop.Run()
			go h.serveSession(client)

			client.SendJSON(map[string]interface{}{
				"type": MsgWelcome,
				"payload": map[string]interface{}{
					"session_id": client.SessionID,
					"config":     h.Config,
				},
			})
			log.Printf("Session %s connected (%d active)", client.SessionID, count)

		case client := <-h.Unregister:
			h.Mutex.Lock()
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				// Closing stops the loop goroutine and the session
				// pump; the pump closes Send on its way out.
				close(client.Loop.StopChan)
			}
			count := len(h.Clients)
			h.Mutex.Unlock()
			log.Printf("Session %s disconnected (%d active)", client.SessionID, count)
		}
	}
}

// serveSession forwards loop output to the socket. The round-end
// transition is detected here from the snapshot stream so the client
// gets one explicit final-score message for its share affordance.
func (h *SessionHub) serveSession(c *Client) {
	wasActive := false
	for {
		select {
		case snap, ok := <-c.Loop.SnapshotChan:
			if !ok {
				return
			}
			c.SendJSON(map[string]interface{}{
				"type":    MsgSnapshot,
				"payload": snap,
			})
			if wasActive && !snap.Active {
				c.Loop.Session.Mutex.RLock()
				embedded := c.Loop.Session.Embedded
				c.Loop.Session.Mutex.RUnlock()
				c.SendJSON(map[string]interface{}{
					"type": MsgRoundEnded,
					"payload": map[string]interface{}{
						"score":       snap.Score.Score,
						"streak":      snap.Score.Streak,
						"multiplier":  snap.Score.Multiplier,
						"total_score": snap.TotalScore,
						"embedded":    embedded,
					},
				})
			}
			wasActive = snap.Active

		case ev, ok := <-c.Loop.EventChan:
			if !ok {
				return
			}
			c.SendJSON(map[string]interface{}{
				"type":    MsgMatchResult,
				"payload": ev,
			})

		case <-c.Loop.StopChan:
			// Last writer out closes Send so the write pump exits.
			close(c.Send)
			return
		}
	}
}

// SessionCount reports the number of connected clients.
func (h *SessionHub) SessionCount() int {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()
	return len(h.Clients)
}
