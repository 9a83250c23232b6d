package api

import (
	"net/http"
	"strings"

	"github.com/Maksym-Lukianenko123/impc/service"
)

// handleCreateSession creates a new empty compile session.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.CreateSession()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, SessionCreateResponse{SessionID: session.ID, CreatedAt: session.CreatedAt})
}

// handleGetStatus reports a session's current execution state.
func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	state, err := session.Service.ExecutionState()
	if err != nil {
		writeJSON(w, http.StatusOK, StatusResponse{SessionID: sessionID, State: "uncompiled"})
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{SessionID: sessionID, State: string(state)})
}

// handleDestroySession removes a session.
func (s *Server) handleDestroySession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := s.sessions.DestroySession(sessionID); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "session destroyed"})
}

// handleCompile parses and lowers a program into the session's VM.
func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	var req CompileRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := session.Service.Compile(req.Source, strings.NewReader(req.Stdin)); err != nil {
		writeJSON(w, http.StatusOK, CompileResponse{Success: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, CompileResponse{Success: true, Warnings: session.Service.Warnings()})
}

// handleStep executes a single instruction and broadcasts the new state.
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	halted, stepErr := session.Service.Step()
	regs, _ := session.Service.RegisterState()
	s.broadcastState(sessionID, regs)

	if stepErr != nil {
		writeJSON(w, http.StatusOK, map[string]any{"halted": true, "error": stepErr.Error(), "registers": ToRegistersResponse(regs)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"halted": halted, "registers": ToRegistersResponse(regs)})
}

// handleRun starts a run-until-pause loop in the background, broadcasting
// state after each pause. It returns immediately; clients watch the
// WebSocket feed for the outcome.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	go func() {
		reason, runErr := session.Service.RunUntilPause()
		regs, _ := session.Service.RegisterState()
		s.broadcastState(sessionID, regs)

		details := map[string]interface{}{"reason": reason}
		if runErr != nil {
			details["error"] = runErr.Error()
		}
		s.broadcaster.BroadcastExecutionEvent(sessionID, "paused", details)
	}()

	writeJSON(w, http.StatusAccepted, SuccessResponse{Success: true, Message: "run started"})
}

// handlePause stops a RunUntilPause loop started by handleRun.
func (s *Server) handlePause(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	session.Service.Pause()
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "paused"})
}

// handleReset restores the session's VM to its initial state.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err := session.Service.Reset(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	regs, _ := session.Service.RegisterState()
	s.broadcastState(sessionID, regs)
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "reset"})
}

// handleGetRegisters returns the session's current register snapshot.
func (s *Server) handleGetRegisters(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	regs, err := session.Service.RegisterState()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ToRegistersResponse(regs))
}

// handleGetOutput drains and returns the session's buffered stdout.
func (s *Server) handleGetOutput(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, OutputResponse{Output: session.Service.Output()})
}

// handleBreakpoint adds a breakpoint (POST) at the requested address.
func (s *Server) handleBreakpoint(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req BreakpointRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		bp, err := session.Service.AddBreakpoint(req.Address)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, bp)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleListBreakpoints lists a session's breakpoints, or removes one when
// called with DELETE and an "id" query parameter.
func (s *Server) handleListBreakpoints(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, BreakpointsResponse{Breakpoints: session.Service.Breakpoints()})
	case http.MethodDelete:
		id, ok := parseIntQuery(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "id query parameter required")
			return
		}
		if err := session.Service.RemoveBreakpoint(id); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleWatchpoint adds a watchpoint on a register or memory cell.
func (s *Server) handleWatchpoint(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req WatchpointRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	wp, err := session.Service.AddWatchpoint(req.Target)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, wp)
}

// handleDeleteWatchpoint removes a watchpoint by ID.
func (s *Server) handleDeleteWatchpoint(w http.ResponseWriter, r *http.Request, sessionID string, id int) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err := session.Service.RemoveWatchpoint(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// handleListWatchpoints lists a session's watchpoints.
func (s *Server) handleListWatchpoints(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, WatchpointsResponse{Watchpoints: session.Service.Watchpoints()})
}

// broadcastState pushes a register/PC snapshot to WebSocket subscribers.
func (s *Server) broadcastState(sessionID string, regs service.RegisterState) {
	s.broadcaster.BroadcastState(sessionID, map[string]interface{}{
		"registers": regs.Registers,
		"pc":        regs.PC,
		"cycles":    regs.Cycles,
	})
}

// parseIntQuery reads an integer query parameter.
func parseIntQuery(r *http.Request, key string) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, false
	}
	var v int
	n := 0
	for _, c := range raw {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	v = n
	return v, true
}
