package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"

	"star_math_server/logic"
	"star_math_server/network"
	"star_math_server/storage"

	"github.com/joho/godotenv"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// 1. Load Env + Config
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}
	addr := envOr("ADDR", ":8080")
	dbPath := envOr("DB_PATH", "scores.db")
	cfgPath := envOr("GAME_CONFIG", "game_config.json")

	cfg := logic.DefaultGameConfig()
	if data, err := os.ReadFile(cfgPath); err != nil {
		log.Printf("Config %s not readable (%v), using defaults", cfgPath, err)
	} else if err := json.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("Parse config error: %v", err)
	}
	logic.ClampGameConfig(&cfg)

	// 2. Init Storage
	store, err := storage.OpenScoreStore(dbPath)
	if err != nil {
		log.Fatalf("Failed to open score store: %v", err)
	}
	defer store.Close()

	// 3. Init Hub
	// Sessions submit over the same HTTP surface external clients use;
	// by default that is this very process.
	leaderboardURL := envOr("LEADERBOARD_URL", "http://127.0.0.1"+ensurePort(addr))
	submitter := network.NewLeaderboardClient(leaderboardURL)
	hub := network.NewSessionHub(&cfg, submitter)
	go hub.Run()

	// 4. Router Setup
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		network.ServeWs(hub, w, r)
	})
	network.NewAPI(store).Register(mux)

	// Plain health endpoint (for load balancers/k8s)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// 5. Start Server
	log.Printf("Star Math server listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("ListenAndServe:", err)
	}
}

func ensurePort(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return addr
	}
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		return addr[i:]
	}
	return ":" + addr
}
