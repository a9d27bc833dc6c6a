package adapthttp

import (
	"net/http"

	"espresso/internal/app"
)

const maxEventsLimit = 500

func (s *Server) handleMachineStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.machine.Status(r.Context()))
}

func (s *Server) handleBrew(size app.Size) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		produced, err := s.machine.Brew(r.Context(), operatorID(r), size)
		if err != nil {
			s.writeMachineError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"producedLitres": produced,
			"status":         s.machine.Status(r.Context()).Status,
		})
	}
}

func (s *Server) handleDescale(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := s.machine.Descale(r.Context(), operatorID(r)); err != nil {
		s.writeMachineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": s.machine.Status(r.Context()).Status})
}

func (s *Server) handleAddWater(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Litres float64 `json:"litres"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	water, err := s.machine.AddWater(r.Context(), operatorID(r), body.Litres)
	if err != nil {
		s.writeMachineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"water":  water,
		"status": s.machine.Status(r.Context()).Status,
	})
}

func (s *Server) handleAddBeans(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Spoons int `json:"spoons"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	beans, err := s.machine.AddBeans(r.Context(), operatorID(r), body.Spoons)
	if err != nil {
		s.writeMachineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"beans":  beans,
		"status": s.machine.Status(r.Context()).Status,
	})
}

func (s *Server) handleMachineEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	limit := min(intQuery(r, "limit", 20), maxEventsLimit)
	items, err := s.machine.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
