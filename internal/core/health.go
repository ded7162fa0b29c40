package core

import (
	"net/http"
)

type healthResponse struct {
	Status string `json:"status"`
	Runs   int    `json:"runs"`
}

// HandleHealth reports liveness. Runs live in memory, so there are no
// downstream dependencies to probe; the run count is included as a cheap
// signal of process state.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	JSON(w, r, http.StatusOK, healthResponse{
		Status: "healthy",
		Runs:   len(s.Runs.List()),
	})
}
