package server

import (
	"encoding/json"
	"net/http"
)

// StatusEntry is one loadable in the status listing.
type StatusEntry struct {
	Name      string `json:"name,omitempty"`
	Triggered bool   `json:"triggered"`
	Loading   bool   `json:"loading"`
	Error     string `json:"error,omitempty"`
}

// StatusResponse is the body served at StatusPath.
type StatusResponse struct {
	Loadables []StatusEntry `json:"loadables"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	entries := s.config.Registry.Entries()
	resp := StatusResponse{Loadables: make([]StatusEntry, 0, len(entries))}
	for _, e := range entries {
		entry := StatusEntry{Name: e.Name, Triggered: e.Triggered, Loading: e.Loading}
		if e.Err != nil {
			entry.Error = e.Err.Error()
		}
		resp.Loadables = append(resp.Loadables, entry)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Debug("status write failed", "error", err)
	}
}
