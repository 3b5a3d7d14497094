package web

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// Session is the live estimation session behind the HTTP API. The line
// "clear" resets it.
type Session interface {
	HandleLine(ctx context.Context, line string) error
	Snapshot() interface{}
}

type Server struct {
	Hub     *Hub
	session Session
}

func NewServer(session Session) *Server {
	return &Server{
		Hub:     NewHub(),
		session: session,
	}
}

// Publish broadcasts v as JSON to websocket clients.
func (s *Server) Publish(v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("web: marshal update: %v", err)
		return
	}
	s.Hub.Broadcast(b)
}

// Handler builds the route table.
func (s *Server) Handler(distDir string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(s.Hub, w, r)
	})
	mux.HandleFunc("GET /api/prediction", s.handlePrediction)
	mux.HandleFunc("POST /api/observations", s.handleObservations)
	mux.HandleFunc("DELETE /api/observations", s.handleClear)

	if distDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(distDir)))
	}
	return mux
}

func (s *Server) Start(port int, distDir string) {
	go s.Hub.Run()

	addr := fmt.Sprintf(":%d", port)
	log.Printf("HTTP Server listening on %s", addr)
	if err := http.ListenAndServe(addr, s.Handler(distDir)); err != nil {
		log.Fatalf("HTTP server error: %v", err)
	}
}

func (s *Server) handlePrediction(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

// handleObservations takes one command per line. Lines that fail to parse
// are reported back; the rest are still applied.
func (s *Server) handleObservations(w http.ResponseWriter, r *http.Request) {
	var errs []string
	accepted := 0
	sc := bufio.NewScanner(r.Body)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := s.session.HandleLine(r.Context(), line); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		accepted++
	}
	if err := sc.Err(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	status := http.StatusOK
	if accepted == 0 && len(errs) > 0 {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]interface{}{
		"accepted": accepted,
		"errors":   errs,
		"latest":   s.session.Snapshot(),
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.session.HandleLine(r.Context(), "clear"); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: encode response: %v", err)
	}
}
