//go:build ignore

// Serviceb is a stand-in for Service B used to exercise /call-service-b
// locally.
//
// Usage:
//
//	go run scripts/serviceb.go -port 8001 -mode ok
//	SERVICE_B_URL=http://localhost:8001/ go run ./cmd
//
// Modes:
//
//	ok       200 with {"from":"B","id":"<uuid>"}
//	status   the status given by -status with a JSON error body
//	garbage  200 with a body that is not JSON
//	slow     sleeps for -delay before answering like ok
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

func main() {
	port := flag.Int("port", 8001, "port to listen on")
	mode := flag.String("mode", "ok", "ok | status | garbage | slow")
	status := flag.Int("status", http.StatusInternalServerError, "status returned in status mode")
	delay := flag.Duration("delay", 10*time.Second, "delay in slow mode")
	flag.Parse()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("request: method=%s path=%s from=%s request_id=%s",
			r.Method, r.URL.Path, r.RemoteAddr, r.Header.Get("X-Request-ID"))

		switch *mode {
		case "status":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(*status)
			json.NewEncoder(w).Encode(map[string]string{"detail": http.StatusText(*status)})
			return
		case "garbage":
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("this is not json"))
			return
		case "slow":
			select {
			case <-time.After(*delay):
			case <-r.Context().Done():
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"from": "B", "id": uuid.NewString()})
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("starting fake Service B on %s in %s mode", addr, *mode)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
