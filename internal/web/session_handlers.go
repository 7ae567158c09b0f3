package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"wayfarer/internal/engine"
	"wayfarer/internal/interfaces"
	"wayfarer/internal/saves"
)

// IntentRequest is the wire form of an engine intent, tagged by type.
type IntentRequest struct {
	Type      string `json:"type"`
	DialogID  string `json:"dialog_id,omitempty"`
	ChoiceID  string `json:"choice_id,omitempty"`
	SceneID   string `json:"scene_id,omitempty"`
	HotspotID string `json:"hotspot_id,omitempty"`
}

// SessionResponse is the envelope of every session endpoint.
type SessionResponse struct {
	Success     bool                `json:"success"`
	SessionID   string              `json:"session_id,omitempty"`
	State       *engine.StateView   `json:"state,omitempty"`
	Transitions []engine.Transition `json:"transitions,omitempty"`
	SaveID      string              `json:"save_id,omitempty"`
	Error       string              `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, SessionResponse{Success: false, Error: err.Error()})
}

// decodeIntent maps a wire intent onto the engine's sum type.
func decodeIntent(req *IntentRequest) (engine.Intent, error) {
	switch req.Type {
	case "start_dialog":
		return engine.StartDialog{DialogID: req.DialogID}, nil
	case "advance":
		return engine.Advance{}, nil
	case "make_choice":
		return engine.MakeChoice{ChoiceID: req.ChoiceID}, nil
	case "change_scene":
		return engine.ChangeScene{SceneID: req.SceneID}, nil
	case "click_hotspot":
		return engine.ClickHotspot{HotspotID: req.HotspotID}, nil
	case "complete_typewriter":
		return engine.CompleteTypewriter{}, nil
	case "retry_generation":
		return engine.RetryGeneration{}, nil
	default:
		return nil, fmt.Errorf("unknown intent type %q", req.Type)
	}
}

// intentErrorStatus maps engine rejections onto HTTP statuses. Everything
// here is recoverable; the session keeps running.
func intentErrorStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidChoice),
		errors.Is(err, engine.ErrInvalidIntent),
		errors.Is(err, engine.ErrLockedHotspot):
		return http.StatusConflict
	case engine.IsContentRefError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// CreateSession starts a new game.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Create()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.attachHub(session)

	state := session.Engine.State()
	writeJSON(w, http.StatusCreated, SessionResponse{
		Success:   true,
		SessionID: session.ID,
		State:     &state,
	})
}

// GetSessionState returns the read-only projection.
func (h *Handlers) GetSessionState(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("session not found"))
		return
	}
	state := session.Engine.State()
	writeJSON(w, http.StatusOK, SessionResponse{
		Success:   true,
		SessionID: session.ID,
		State:     &state,
	})
}

// DispatchIntent decodes and dispatches one intent.
func (h *Handlers) DispatchIntent(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("session not found"))
		return
	}

	var req IntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}
	intent, err := decodeIntent(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	transitions, err := session.Engine.Dispatch(intent)
	if err != nil {
		writeError(w, intentErrorStatus(err), err)
		return
	}

	state := session.Engine.State()
	writeJSON(w, http.StatusOK, SessionResponse{
		Success:     true,
		SessionID:   session.ID,
		State:       &state,
		Transitions: transitions,
	})
}

type saveRequest struct {
	SaveID string `json:"save_id"`
}

// SaveSession snapshots the session into the save store.
func (h *Handlers) SaveSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("session not found"))
		return
	}

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SaveID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("save_id is required"))
		return
	}

	save, err := h.saveManager.Save(r.Context(), req.SaveID, session.Engine)
	if err != nil {
		writeError(w, storageErrorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{
		Success:   true,
		SessionID: session.ID,
		SaveID:    save.ID,
	})
}

// LoadSession restores a snapshot into the session, replacing its engine.
// A corrupt save never tears down the running session.
func (h *Handlers) LoadSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if _, ok := h.sessions.Get(sessionID); !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("session not found"))
		return
	}

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SaveID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("save_id is required"))
		return
	}

	eng, err := h.saveManager.Restore(r.Context(), req.SaveID)
	if err != nil {
		writeError(w, storageErrorStatus(err), err)
		return
	}

	session, ok := h.sessions.Replace(sessionID, eng)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("session not found"))
		return
	}
	h.attachHub(session)

	state := session.Engine.State()
	writeJSON(w, http.StatusOK, SessionResponse{
		Success:   true,
		SessionID: session.ID,
		State:     &state,
		SaveID:    req.SaveID,
	})
}

// DeleteSession drops the live session; saves stay in storage.
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	h.sessions.Delete(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, SessionResponse{Success: true})
}

// ListSaves lists stored snapshots, most recent first.
func (h *Handlers) ListSaves(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.saveManager.List(r.Context())
	if err != nil {
		writeError(w, storageErrorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"saves":   summaries,
	})
}

// DeleteSave removes a stored snapshot.
func (h *Handlers) DeleteSave(w http.ResponseWriter, r *http.Request) {
	if err := h.saveManager.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, storageErrorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Success: true})
}

func storageErrorStatus(err error) int {
	switch {
	case errors.Is(err, interfaces.ErrSaveNotFound):
		return http.StatusNotFound
	case saves.IsCorruptSave(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, interfaces.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// attachHub forwards the engine's transitions to the websocket hub.
func (h *Handlers) attachHub(session *Session) {
	sessionID := session.ID
	session.Engine.AddListener(func(tr engine.Transition) {
		h.hub.Broadcast(TransitionEvent{SessionID: sessionID, Transition: tr})
	})
}
