package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/litmap/litmap/pkg/domain/model/auth"
	"github.com/litmap/litmap/pkg/domain/types"
	"github.com/litmap/litmap/pkg/usecase"
	"github.com/litmap/litmap/pkg/utils/errutil"
	"github.com/m-mizutani/goerr/v2"
)

// requestUserID extracts the authenticated user from the request context
func requestUserID(r *http.Request) (types.UserID, bool) {
	token, ok := auth.TokenFromContext(r.Context())
	if !ok {
		return "", false
	}
	return token.UserID(), true
}

type sessionCreateRequest struct {
	Link  string `json:"link"`
	Mode  string `json:"mode"`
	Title string `json:"title"`
}

func sessionCreateHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUserID(r)
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		var req sessionCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusUnprocessableEntity)
			return
		}

		mode := types.DiscoveryMode(req.Mode)
		if mode == "" {
			mode = types.ModeGrounding
		}

		session, g, err := uc.Session.Create(r.Context(), userID, req.Link, mode, req.Title)
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusCreated, sessionDetailResponse{
			sessionResponse: toSessionResponse(session),
			Graph:           toGraphResponse(g),
		})
	}
}

func sessionListHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUserID(r)
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		sessions, err := uc.Session.List(r.Context(), userID)
		if err != nil {
			handleError(w, r, err)
			return
		}

		results := make([]sessionResponse, 0, len(sessions))
		for _, s := range sessions {
			results = append(results, toSessionResponse(s))
		}

		writeJSON(w, r, http.StatusOK, map[string]any{"sessions": results})
	}
}

func sessionGetHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUserID(r)
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		id := types.SessionID(chi.URLParam(r, "id"))
		session, g, err := uc.Session.Get(r.Context(), id, userID)
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, sessionDetailResponse{
			sessionResponse: toSessionResponse(session),
			Graph:           toGraphResponse(g),
		})
	}
}

type sessionRenameRequest struct {
	Title string `json:"title"`
}

func sessionRenameHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUserID(r)
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		var req sessionRenameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusUnprocessableEntity)
			return
		}
		if req.Title == "" {
			errutil.HandleHTTP(r.Context(), w, goerr.New("title is required"), http.StatusUnprocessableEntity)
			return
		}

		id := types.SessionID(chi.URLParam(r, "id"))
		if err := uc.Session.Rename(r.Context(), id, userID, req.Title); err != nil {
			handleError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func sessionDeleteHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUserID(r)
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		id := types.SessionID(chi.URLParam(r, "id"))
		if err := uc.Session.Delete(r.Context(), id, userID); err != nil {
			handleError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
