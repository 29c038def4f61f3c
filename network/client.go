package network

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"star_math_server/logic"

	"github.com/gorilla/websocket"
)

var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client message type codes (client -> server).
const (
	MsgLogin        = 2001
	MsgStartRound   = 2002
	MsgRestartRound = 2003
	MsgSelectRocket = 2004
	MsgChoosePlanet = 2005
)

// Server message type codes (server -> client).
const (
	MsgWelcome     = 1001
	MsgSnapshot    = 3002
	MsgMatchResult = 3003
	MsgRoundEnded  = 3004
)

type Client struct {
	Hub       *SessionHub
	Conn      *websocket.Conn
	Send      chan []byte
	SessionID string
	Loop      *logic.GameLoop
}

var sessionCounter int64

func newSessionID() string {
	val := atomic.AddInt64(&sessionCounter, 1)
	return fmt.Sprintf("s_%d_%d", time.Now().UnixNano(), val)
}

// ServeWs upgrades the connection and hands the client its own game
// session and loop.
func ServeWs(hub *SessionHub, w http.ResponseWriter, r *http.Request) {
	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	session := logic.NewGameSession(hub.Config, hub.NewRand())
	session.Submitter = hub.Submitter
	loop := logic.NewGameLoop(session)

	client := &Client{
		Hub:       hub,
		Conn:      conn,
		Send:      make(chan []byte, 256),
		SessionID: newSessionID(),
		Loop:      loop,
	}
	client.Hub.Register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()
	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}

		var req map[string]interface{}
		if err := json.Unmarshal(message, &req); err != nil {
			continue
		}

		typeCode, ok := req["type"].(float64)
		if !ok {
			continue
		}
		payload, _ := req["payload"].(map[string]interface{})

		switch int(typeCode) {
		case MsgLogin:
			in := logic.PlayerInput{Type: logic.InputSetUser}
			if payload != nil {
				in.UserID, _ = payload["user_id"].(string)
				in.Username, _ = payload["username"].(string)
				in.Embedded, _ = payload["embedded"].(bool)
			}
			c.Loop.InputChan <- in
		case MsgStartRound:
			c.Loop.InputChan <- logic.PlayerInput{Type: logic.InputStartRound}
		case MsgRestartRound:
			c.Loop.InputChan <- logic.PlayerInput{Type: logic.InputRestartRound}
		case MsgSelectRocket:
			if id, ok := entityID(payload); ok {
				c.Loop.InputChan <- logic.PlayerInput{Type: logic.InputSelectRocket, EntityID: id}
			}
		case MsgChoosePlanet:
			if id, ok := entityID(payload); ok {
				c.Loop.InputChan <- logic.PlayerInput{Type: logic.InputChoosePlanet, EntityID: id}
			}
		}
	}
}

func entityID(payload map[string]interface{}) (int, bool) {
	if payload == nil {
		return 0, false
	}
	id, ok := payload["id"].(float64)
	if !ok {
		return 0, false
	}
	return int(id), true
}

func (c *Client) writePump() {
	defer func() {
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.Conn.WriteMessage(websocket.TextMessage, message)
		}
	}
}

func (c *Client) SendJSON(v interface{}) {
	b, _ := json.Marshal(v)
	select {
	case c.Send <- b:
	default:
	}
}
