package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("Failed to write response", "error", err)
	}
}

// queryInt reads a positive integer query parameter.
func queryInt(r *http.Request, name string, def int, allowZero bool) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n == 0 && !allowZero {
		return def
	}
	return n
}

// handleHotkey returns the current shortcut
func (s *Server) handleHotkey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	combo, registered := s.backend.Hotkey()
	view := hotkeyView(combo)
	view.Registered = registered
	writeJSON(w, http.StatusOK, view)
}

// handleCapture starts or ends a preference capture session
func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var err error
	switch req.Action {
	case "begin":
		err = s.backend.BeginCapture()
	case "end":
		err = s.backend.EndCapture()
	default:
		http.Error(w, "Unknown action", http.StatusBadRequest)
		return
	}
	if err != nil {
		slog.Error("Capture action failed", "action", req.Action, "error", err)
		http.Error(w, "Capture action failed", http.StatusInternalServerError)
		return
	}

	combo, _ := s.backend.Hotkey()
	writeJSON(w, http.StatusOK, map[string]any{
		"capturing": s.backend.Capturing(),
		"hotkey":    hotkeyView(combo),
	})
}

// handlePopover opens, closes or toggles the popover
func (s *Server) handlePopover(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	switch req.Action {
	case "open":
		s.backend.OpenPopover()
	case "close":
		s.backend.ClosePopover()
	case "toggle":
		s.backend.TogglePopover()
	default:
		http.Error(w, "Unknown action", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, PopoverMessage{Open: s.backend.PopoverOpen()})
}

// handleDictionaries lists the configured dictionaries
func (s *Server) handleDictionaries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"dictionaries": s.backend.Dictionaries(),
		"selected":     s.backend.SelectedDictionary(),
	})
}

// handleSelectDictionary switches the popover to another dictionary
func (s *Server) handleSelectDictionary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Index *int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if *req.Index < 0 || *req.Index >= len(s.backend.Dictionaries()) {
		http.Error(w, "Dictionary index out of range", http.StatusBadRequest)
		return
	}

	if err := s.backend.SelectDictionary(*req.Index); err != nil {
		slog.Error("Failed to select dictionary", "index", *req.Index, "error", err)
		http.Error(w, "Failed to select dictionary", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"selected": s.backend.SelectedDictionary()})
}

// handleStatus returns the current popover and shortcut state
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state := s.state()
	writeJSON(w, http.StatusOK, map[string]any{
		"popoverOpen": state.PopoverOpen,
		"capturing":   state.Capturing,
		"hotkey":      state.Hotkey,
		"selected":    state.Selected,
		"clients":     s.ClientCount(),
	})
}

// handleActivity returns paginated popover activity
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.db == nil {
		http.Error(w, "Activity unavailable", http.StatusNotFound)
		return
	}

	limit := queryInt(r, "limit", 50, false)
	offset := queryInt(r, "offset", 0, true)

	events, err := s.db.GetActivity(limit, offset)
	if err != nil {
		slog.Error("Failed to get activity", "error", err)
		http.Error(w, "Failed to get activity", http.StatusInternalServerError)
		return
	}

	total, err := s.db.GetActivityCount()
	if err != nil {
		slog.Error("Failed to get activity count", "error", err)
		http.Error(w, "Failed to get activity", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"activity": events,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// handleStats returns activity statistics for the last N days
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.db == nil {
		http.Error(w, "Activity unavailable", http.StatusNotFound)
		return
	}

	days := queryInt(r, "days", 7, false)

	daily, err := s.db.GetDailyActivity(days)
	if err != nil {
		slog.Error("Failed to get daily activity", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	topics, err := s.db.GetTopicCounts(days)
	if err != nil {
		slog.Error("Failed to get topic counts", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"days":   days,
		"daily":  daily,
		"topics": topics,
	})
}
