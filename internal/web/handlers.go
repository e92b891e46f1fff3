package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	"github.com/example/seating-service/internal/db"
	"github.com/example/seating-service/internal/executor"
	"github.com/example/seating-service/internal/intake"
	"github.com/example/seating-service/internal/models"
	"github.com/example/seating-service/internal/seating"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"error": msg, "code": code})
}

// writeDomainErr maps the executor/intake sentinels onto HTTP statuses.
// Anything unrecognized from a mutation is a server fault.
func writeDomainErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, executor.ErrConfirmRequired), errors.Is(err, intake.ErrConfirmRequired):
		writeError(w, http.StatusConflict, "confirm_required", err.Error())
	case errors.Is(err, executor.ErrTablesConflict):
		writeError(w, http.StatusConflict, "stale_tables", err.Error()+"; recompute options and retry")
	case errors.Is(err, executor.ErrSwapInconsistent):
		writeError(w, http.StatusInternalServerError, "swap_inconsistent", err.Error())
	case db.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", err.Error())
	}
}

func pathID(r *http.Request) (uuid.UUID, error) {
	ps := httprouter.ParamsFromContext(r.Context())
	return uuid.Parse(ps.ByName("id"))
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func parseTableIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	staffID, err := s.Auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
		return
	}
	if err := s.Auth.SetSession(w, r, staffID); err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "could not create session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"staff_id": staffID})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Auth.ClearSession(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// handleFloor returns every table's derived occupancy, ordered by table
// number for a stable floor-plan render.
func (s *Server) handleFloor(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Loader.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "could not load floor state")
		return
	}
	idx := seating.BuildStatusIndex(snap.Tables, snap.Bookings, snap.Now, snap.Lookahead)

	statuses := make([]seating.TableStatus, 0, len(idx))
	for _, st := range idx {
		statuses = append(statuses, st)
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Table.TableNumber < statuses[j].Table.TableNumber
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"as_of":  snap.Now,
		"tables": statuses,
	})
}

func (s *Server) handleQueues(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Loader.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "could not load floor state")
		return
	}
	cls := seating.Classify(snap.Bookings, snap.Now, snap.Flags, snap.Urgency)
	writeJSON(w, http.StatusOK, cls)
}

func (s *Server) handleBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid booking id")
		return
	}
	b, err := s.Store.GetBooking(r.Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", "booking "+id.String()+" not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", "could not load booking")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleOptions ranks seating options for a booking. With ?tables=a,b the
// generator is restricted to that candidate set; without it the whole
// floor is enumerated.
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid booking id")
		return
	}
	b, err := s.Store.GetBooking(r.Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", "booking "+id.String()+" not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", "could not load booking")
		return
	}
	snap, err := s.Loader.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "could not load floor state")
		return
	}

	var opts []seating.SwapOption
	if raw := r.URL.Query().Get("tables"); raw != "" {
		ids, err := parseTableIDs(strings.Split(raw, ","))
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "invalid table id in tables parameter")
			return
		}
		candidates := make([]models.Table, 0, len(ids))
		for _, tid := range ids {
			found := false
			for _, t := range snap.Tables {
				if t.ID == tid {
					candidates = append(candidates, t)
					found = true
					break
				}
			}
			if !found {
				writeError(w, http.StatusNotFound, "not_found", "table "+tid.String()+" not found")
				return
			}
		}
		opts = seating.GenerateOptions(b, candidates, snap)
	} else {
		opts = seating.EnumerateOptions(b, snap)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"booking_id": b.ID,
		"options":    opts,
	})
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid booking id")
		return
	}
	var req struct {
		TableIDs []string `json:"table_ids"`
		Confirm  bool     `json:"confirm"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	tableIDs, err := parseTableIDs(req.TableIDs)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid table id")
		return
	}
	if err := s.Exec.Assign(r.Context(), id, tableIDs, req.Confirm); err != nil {
		writeDomainErr(w, err)
		return
	}
	s.Loader.Invalidate()
	writeJSON(w, http.StatusOK, map[string]string{"status": "assigned"})
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid booking id")
		return
	}
	var req struct {
		TableIDs []string `json:"table_ids"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	tableIDs, err := parseTableIDs(req.TableIDs)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid table id")
		return
	}
	if err := s.Exec.CheckIn(r.Context(), id, tableIDs); err != nil {
		writeDomainErr(w, err)
		return
	}
	s.Loader.Invalidate()
	writeJSON(w, http.StatusOK, map[string]string{"status": "seated"})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid booking id")
		return
	}
	if err := s.Exec.Clear(r.Context(), id); err != nil {
		writeDomainErr(w, err)
		return
	}
	s.Loader.Invalidate()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BookingA string `json:"booking_a"`
		BookingB string `json:"booking_b"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	aID, err := uuid.Parse(req.BookingA)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid booking_a id")
		return
	}
	bID, err := uuid.Parse(req.BookingB)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid booking_b id")
		return
	}
	if err := s.Exec.Swap(r.Context(), aID, bID); err != nil {
		writeDomainErr(w, err)
		return
	}
	s.Loader.Invalidate()
	writeJSON(w, http.StatusOK, map[string]string{"status": "swapped"})
}

// handleWalkIn creates a walk-in. Without confirm a conflicting draft is
// rejected with 409 and the full conflict report so the host can decide;
// with confirm the displacements are applied and the party is seated.
func (s *Server) handleWalkIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		intake.Draft
		Confirm bool `json:"confirm"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	s.createWalkIn(w, r, req.Draft, req.Confirm)
}

// handleWalkInConfirm re-submits a draft with the conflicts accepted.
func (s *Server) handleWalkInConfirm(w http.ResponseWriter, r *http.Request) {
	var draft intake.Draft
	if err := decodeBody(r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	s.createWalkIn(w, r, draft, true)
}

func (s *Server) createWalkIn(w http.ResponseWriter, r *http.Request, draft intake.Draft, confirmed bool) {
	booking, report, err := s.Intake.Create(r.Context(), draft, confirmed)
	if err != nil {
		if errors.Is(err, intake.ErrConfirmRequired) {
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":  "walk-in requires confirmation",
				"code":   "confirm_required",
				"report": report,
			})
			return
		}
		writeDomainErr(w, err)
		return
	}
	s.Loader.Invalidate()
	writeJSON(w, http.StatusCreated, map[string]any{
		"booking": booking,
		"report":  report,
	})
}
