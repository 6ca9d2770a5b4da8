package web

import (
	"net/http"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Home(r.Context()))
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"location": s.service.Location(r.Context())})
}

// handleNotices drains pending notices; each is returned once.
func (s *Server) handleNotices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.notices.Drain())
}
