package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/manvel7/Antd-small-test/internal/api"
	"github.com/manvel7/Antd-small-test/internal/store"
	"github.com/manvel7/Antd-small-test/internal/user"
	"github.com/manvel7/Antd-small-test/internal/validate"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

type pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.repo.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			s.logger.Error("health check failed", "error", err)
			respondError(w, http.StatusServiceUnavailable, api.CodeInternal, "store unavailable")
			return
		}
	}
	respondJSON(w, http.StatusOK, api.Response[map[string]string]{
		Data:    map[string]string{"status": "healthy"},
		Success: true,
	})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Has("page") || q.Has("limit") {
		page, err := queryInt(q.Get("page"), 1)
		if err != nil {
			respondError(w, http.StatusBadRequest, api.CodeInvalidQuery, "page must be an integer")
			return
		}
		limit, err := queryInt(q.Get("limit"), 10)
		if err != nil {
			respondError(w, http.StatusBadRequest, api.CodeInvalidQuery, "limit must be an integer")
			return
		}
		p, err := s.repo.ListPage(r.Context(), page, limit)
		if err != nil {
			s.internalError(w, "list users page", err)
			return
		}
		respondJSON(w, http.StatusOK, api.PageResponse{
			Data: p.Records,
			Pagination: api.Pagination{
				Page:       p.Page,
				Limit:      p.Limit,
				Total:      p.Total,
				TotalPages: p.TotalPages,
			},
			Success: true,
		})
		return
	}

	users, err := s.repo.List(r.Context())
	if err != nil {
		s.internalError(w, "list users", err)
		return
	}
	respondJSON(w, http.StatusOK, api.Response[[]user.Record]{Data: users, Success: true})
}

func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.repo.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.internalError(w, "search users", err)
		return
	}
	respondJSON(w, http.StatusOK, api.Response[[]user.Record]{Data: users, Success: true})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, err := s.repo.Get(r.Context(), id)
	if err != nil {
		s.storeError(w, "get user", id, err)
		return
	}
	respondJSON(w, http.StatusOK, api.Response[user.Record]{Data: rec, Success: true})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in user.Input
	if !decodeBody(w, r, &in) {
		return
	}
	if !checkInput(w, in) {
		return
	}
	rec, err := s.repo.Create(r.Context(), in)
	if err != nil {
		s.internalError(w, "create user", err)
		return
	}
	s.logger.Info("user created", "id", rec.ID)
	respondJSON(w, http.StatusCreated, api.Response[user.Record]{
		Data:    rec,
		Message: "User created successfully",
		Success: true,
	})
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var in user.Input
	if !decodeBody(w, r, &in) {
		return
	}
	if !checkInput(w, in) {
		return
	}
	rec, err := s.repo.Update(r.Context(), id, in)
	if err != nil {
		s.storeError(w, "update user", id, err)
		return
	}
	s.logger.Info("user updated", "id", rec.ID)
	respondJSON(w, http.StatusOK, api.Response[user.Record]{
		Data:    rec,
		Message: "User updated successfully",
		Success: true,
	})
}

func (s *Server) handlePatchUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var p user.Patch
	if !decodeBody(w, r, &p) {
		return
	}

	current, err := s.repo.Get(r.Context(), id)
	if err != nil {
		s.storeError(w, "get user", id, err)
		return
	}
	if !checkInput(w, current.Apply(p).Input()) {
		return
	}

	rec, err := s.repo.Patch(r.Context(), id, p)
	if err != nil {
		s.storeError(w, "patch user", id, err)
		return
	}
	s.logger.Info("user patched", "id", rec.ID)
	respondJSON(w, http.StatusOK, api.Response[user.Record]{
		Data:    rec,
		Message: "User updated successfully",
		Success: true,
	})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.repo.Delete(r.Context(), id); err != nil {
		s.storeError(w, "delete user", id, err)
		return
	}
	s.logger.Info("user deleted", "id", id)
	respondJSON(w, http.StatusOK, api.Response[struct{}]{
		Message: "User deleted successfully",
		Success: true,
	})
}

func (s *Server) storeError(w http.ResponseWriter, op, id string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, api.CodeNotFound, "User not found")
		return
	}
	s.internalError(w, op+" "+id, err)
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error("request failed", "op", op, "error", err)
	respondError(w, http.StatusInternalServerError, api.CodeInternal, "Internal server error")
}

// checkInput validates in with the form rules and writes a 422 on failure.
func checkInput(w http.ResponseWriter, in user.Input) bool {
	res := validate.Validate(user.DraftFrom(user.Record{}.WithInput(in)))
	if res.Valid {
		return true
	}
	resp := api.ErrorResponse{
		Message: "Validation failed",
		Code:    api.CodeValidationFailed,
	}
	for _, fe := range res.Errors() {
		resp.Fields = append(resp.Fields, api.FieldError{Field: string(fe.Field), Reason: fe.Reason})
	}
	respondJSON(w, http.StatusUnprocessableEntity, resp)
	return false
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, api.CodeInvalidJSON, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func queryInt(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, api.ErrorResponse{Message: message, Code: code})
}
