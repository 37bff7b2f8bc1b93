package rebar

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"Acero/internal/auth"

	"github.com/gorilla/mux"
)

// Sessions hands out the registry that belongs to a login session.
type Sessions interface {
	Registry(sessionID string) *Registry
}

type Handler struct {
	Sessions Sessions
	Table    *WeightTable
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Index *int   `json:"index,omitempty"`
}

type listResponse struct {
	Placements []Line `json:"placements"`
	Count      int    `json:"count"`
}

type weightsResponse struct {
	Policy  DiameterPolicy `json:"unknown_diameter_policy"`
	Weights []WeightEntry  `json:"weights"`
	Kinds   []Kind         `json:"kinds"`
}

// writeJSON encodes v before touching the response so a failed encode still
// reaches the client as a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.Printf("rebar: encode response: %v", err)
		http.Error(w, "Response encoding error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// WriteError maps registry errors to status codes.
func WriteError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	var nerr *NotFoundError
	var berr *BatchError
	switch {
	case errors.As(err, &berr):
		body := errorBody{Error: berr.Error(), Index: &berr.Index}
		if errors.As(berr.Err, &verr) {
			body.Field = verr.Field
		}
		writeJSON(w, http.StatusBadRequest, body)
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: verr.Error(), Field: verr.Field})
	case errors.As(err, &nerr):
		writeJSON(w, http.StatusNotFound, errorBody{Error: nerr.Error()})
	default:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	}
}

// registry resolves the caller's registry; it writes 401 and returns nil when the
// request carries no session.
func (h *Handler) registry(w http.ResponseWriter, r *http.Request) *Registry {
	sid, ok := auth.SessionID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil
	}
	return h.Sessions.Registry(sid)
}

func placementID(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["id"])
}

func (h *Handler) Weights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, weightsResponse{
		Policy:  h.Table.Policy(),
		Weights: h.Table.Entries(),
		Kinds:   Kinds,
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	reg := h.registry(w, r)
	if reg == nil {
		return
	}
	lines := Lines(reg.Snapshot())
	writeJSON(w, http.StatusOK, listResponse{Placements: lines, Count: len(lines)})
}

// Get returns one placement by id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	reg := h.registry(w, r)
	if reg == nil {
		return
	}
	id, err := placementID(r)
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	p, ok := reg.Get(id)
	if !ok {
		WriteError(w, &NotFoundError{ID: id})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	reg := h.registry(w, r)
	if reg == nil {
		return
	}
	var input Fields
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	p, err := reg.Add(input)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	reg := h.registry(w, r)
	if reg == nil {
		return
	}
	id, err := placementID(r)
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	var input Fields
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	p, err := reg.Update(id, input)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	reg := h.registry(w, r)
	if reg == nil {
		return
	}
	id, err := placementID(r)
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	if err := reg.Remove(id); err != nil {
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	reg := h.registry(w, r)
	if reg == nil {
		return
	}
	reg.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	reg := h.registry(w, r)
	if reg == nil {
		return
	}
	writeJSON(w, http.StatusOK, Compute(reg.Table(), reg.Snapshot()))
}

// Calc runs a stateless take-off over the posted items.
func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input BatchInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := CalculateBatch(h.Table, input)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func position(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["pos"])
}

// UpdateAt edits the placement shown at a 1-based row of the current list.
func (h *Handler) UpdateAt(w http.ResponseWriter, r *http.Request) {
	reg := h.registry(w, r)
	if reg == nil {
		return
	}
	pos, err := position(r)
	if err != nil {
		http.Error(w, "Invalid position", http.StatusBadRequest)
		return
	}
	var input Fields
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	p, err := reg.UpdateAt(pos, input)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) RemoveAt(w http.ResponseWriter, r *http.Request) {
	reg := h.registry(w, r)
	if reg == nil {
		return
	}
	pos, err := position(r)
	if err != nil {
		http.Error(w, "Invalid position", http.StatusBadRequest)
		return
	}
	if err := reg.RemoveAt(pos); err != nil {
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
