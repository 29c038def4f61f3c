package network

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"star_math_server/logic"
	"star_math_server/storage"
)

// LeaderboardClient is the core-side collaborator that submits final
// results and fetches rankings over HTTP. Every failure is logged and
// replaced with a safe default: the round-end flow always completes
// and leaderboard UI always renders, possibly empty.
type LeaderboardClient struct {
	BaseURL string
	HTTP    *http.Client
}

// NewLeaderboardClient builds a client with a short timeout so score
// submission can never stall round-end presentation.
func NewLeaderboardClient(baseURL string) *LeaderboardClient {
	return &LeaderboardClient{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 3 * time.Second},
	}
}

// SubmitScore implements logic.ScoreSubmitter.
func (c *LeaderboardClient) SubmitScore(sub logic.Submission) logic.SubmitResult {
	body, err := json.Marshal(sub)
	if err != nil {
		log.Printf("Encoding score submission: %v", err)
		return logic.SubmitResult{Success: false}
	}

	resp, err := c.HTTP.Post(c.BaseURL+"/api/save-score", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("Submitting score: %v", err)
		return logic.SubmitResult{Success: false}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Submitting score: service returned %d", resp.StatusCode)
		return logic.SubmitResult{Success: false}
	}

	var result logic.SubmitResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Printf("Decoding submission response: %v", err)
		return logic.SubmitResult{Success: false}
	}
	return result
}

// GetDailyLeaderboard returns today's top rows, empty on any failure.
func (c *LeaderboardClient) GetDailyLeaderboard() []LeaderboardRow {
	return c.fetchRows(c.BaseURL + "/api/leaderboard/daily")
}

// GetWeeklyLeaderboard returns the all-time top rows, empty on any
// failure.
func (c *LeaderboardClient) GetWeeklyLeaderboard() []LeaderboardRow {
	return c.fetchRows(c.BaseURL + "/api/leaderboard/weekly")
}

func (c *LeaderboardClient) fetchRows(url string) []LeaderboardRow {
	resp, err := c.HTTP.Get(url)
	if err != nil {
		log.Printf("Fetching leaderboard: %v", err)
		return []LeaderboardRow{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Fetching leaderboard: service returned %d", resp.StatusCode)
		return []LeaderboardRow{}
	}

	var rows []LeaderboardRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		log.Printf("Decoding leaderboard response: %v", err)
		return []LeaderboardRow{}
	}
	return rows
}

// GetUserPosition returns the user's ranks, {0,0} on any failure.
func (c *LeaderboardClient) GetUserPosition(userID string) storage.Position {
	resp, err := c.HTTP.Get(fmt.Sprintf("%s/api/user-position/%s", c.BaseURL, userID))
	if err != nil {
		log.Printf("Fetching user position: %v", err)
		return storage.Position{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Fetching user position: service returned %d", resp.StatusCode)
		return storage.Position{}
	}

	var pos storage.Position
	if err := json.NewDecoder(resp.Body).Decode(&pos); err != nil {
		log.Printf("Decoding user position response: %v", err)
		return storage.Position{}
	}
	return pos
}
