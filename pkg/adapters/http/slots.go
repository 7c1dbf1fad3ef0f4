package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aretw0/storyloom"
	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/go-chi/chi/v5"
)

type slotRequest struct {
	Session string `json:"session"`
	Name    string `json:"name"`
}

type slotCreated struct {
	ID string `json:"id"`
}

// ListSlots handles GET /slots.
func (s *Server) ListSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := s.Slots.ListSlots(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if slots == nil {
		slots = []domain.Slot{}
	}
	s.writeJSON(w, http.StatusOK, slots)
}

// CreateSlot handles POST /slots with body {"session": id, "name": name}.
func (s *Server) CreateSlot(w http.ResponseWriter, r *http.Request) {
	var req slotRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Session == "" || strings.TrimSpace(req.Name) == "" {
		s.writeError(w, r, fmt.Errorf("%w: session and name are required", errBadRequest))
		return
	}

	var id string
	err := s.Sessions.Do(r.Context(), req.Session, func(ctx context.Context, g *storyloom.Game) error {
		var err error
		id, err = g.SaveSlot(ctx, req.Name)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, slotCreated{ID: id})
}

// GetSlot handles GET /slots/{slot}.
func (s *Server) GetSlot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "slot")
	slots, err := s.Slots.ListSlots(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	for _, slot := range slots {
		if slot.ID == id {
			s.writeJSON(w, http.StatusOK, slot)
			return
		}
	}
	s.writeError(w, r, fmt.Errorf("%w: %q", domain.ErrSlotNotFound, id))
}

// RenameSlot handles PATCH /slots/{slot} with body {"name": name}.
func (s *Server) RenameSlot(w http.ResponseWriter, r *http.Request) {
	var req slotRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.writeError(w, r, fmt.Errorf("%w: name is required", errBadRequest))
		return
	}
	if err := s.Slots.RenameSlot(r.Context(), chi.URLParam(r, "slot"), req.Name); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteSlot handles DELETE /slots/{slot}.
func (s *Server) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	if err := s.Slots.DeleteSlot(r.Context(), chi.URLParam(r, "slot")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CopySlot handles POST /slots/{slot}/copy with body {"name": name}.
func (s *Server) CopySlot(w http.ResponseWriter, r *http.Request) {
	var req slotRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.writeError(w, r, fmt.Errorf("%w: name is required", errBadRequest))
		return
	}
	id, err := s.Slots.CopySlot(r.Context(), chi.URLParam(r, "slot"), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, slotCreated{ID: id})
}
