package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/storyloom"
	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// errSessionNotOpen is returned when reading a session that was never opened.
var errSessionNotOpen = errors.New("session is not open")

type chooseRequest struct {
	Index *int `json:"index"`
}

// OpenSession handles POST /sessions/{id}: it opens or resumes the session.
func (s *Server) OpenSession(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(context.Context, *storyloom.Game) error { return nil })
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var view domain.View
	err := s.Sessions.WithLock(r.Context(), id, func(ctx context.Context) error {
		game, ok := s.Sessions.Get(id)
		if !ok {
			return fmt.Errorf("%w: %q", errSessionNotOpen, id)
		}
		view = game.Render(ctx)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// DeleteSession handles DELETE /sessions/{id}: progress is cleared.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Choose handles POST /sessions/{id}/choose with body {"index": n}.
func (s *Server) Choose(w http.ResponseWriter, r *http.Request) {
	var req chooseRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Index == nil {
		s.writeError(w, r, fmt.Errorf("%w: index is required", errBadRequest))
		return
	}
	s.mutate(w, r, func(ctx context.Context, g *storyloom.Game) error {
		return g.Choose(ctx, *req.Index)
	})
}

// LoadSlot handles POST /sessions/{id}/load/{slot}.
func (s *Server) LoadSlot(w http.ResponseWriter, r *http.Request) {
	slot := chi.URLParam(r, "slot")
	s.mutate(w, r, func(ctx context.Context, g *storyloom.Game) error {
		return g.LoadSlot(ctx, slot)
	})
}

func (s *Server) navigate(op func(*storyloom.Game, context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mutate(w, r, func(ctx context.Context, g *storyloom.Game) error {
			return op(g, ctx)
		})
	}
}

// SaveErrorHeader carries the auto-save failure of a mutation that was
// applied anyway.
const SaveErrorHeader = "X-Save-Error"

// mutate runs op on the session, then answers with the resulting view and
// broadcasts it to the session's subscribers. When only the auto-save
// failed the session has still moved, so the view is returned with the
// failure reported in SaveErrorHeader.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, op func(context.Context, *storyloom.Game) error) {
	id := chi.URLParam(r, "id")
	var (
		view    domain.View
		saveErr error
	)
	err := s.Sessions.Do(r.Context(), id, func(ctx context.Context, g *storyloom.Game) error {
		if err := op(ctx, g); err != nil {
			if !appliedButUnsaved(err) {
				return err
			}
			saveErr = err
		}
		view = g.Render(ctx)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if saveErr != nil {
		s.logger.Warn("session moved but was not saved", "session", id, "error", saveErr)
		w.Header().Set(SaveErrorHeader, saveErr.Error())
	}
	if data, err := json.Marshal(view); err == nil {
		s.Streams.Broadcast(id, string(data))
	}
	s.writeJSON(w, http.StatusOK, view)
}

// appliedButUnsaved reports an auto-save failure raised after the engine
// already changed state. Read failures leave the state untouched.
func appliedButUnsaved(err error) bool {
	var perr *domain.PersistError
	return errors.As(err, &perr) && perr.Op == "save"
}
