package server

import (
	"context"
	"encoding/json"
	"net/http"

	apperrors "cryptofolio/internal/errors"
	"cryptofolio/internal/models"
)

type contextKey string

const userKey contextKey = "user"

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var validationErr *apperrors.ValidationError
	var authErr *apperrors.AuthError
	var marketErr *apperrors.MarketDataError
	var remoteErr *apperrors.RemoteError

	switch {
	case apperrors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validationErr.Message, Kind: "validation"})
	case apperrors.As(err, &authErr):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated", Kind: "auth"})
	case apperrors.Is(err, apperrors.ErrUserExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "account already exists", Kind: "auth"})
	case apperrors.Is(err, apperrors.ErrTradeClosed):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "trade is already closed", Kind: "lifecycle"})
	case apperrors.Is(err, apperrors.ErrTradeNotFound),
		apperrors.Is(err, apperrors.ErrPlanNotFound),
		apperrors.Is(err, apperrors.ErrDataNotFound),
		apperrors.Is(err, apperrors.ErrCoinNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Kind: "not_found"})
	case apperrors.As(err, &marketErr):
		status := http.StatusBadGateway
		switch marketErr.Kind {
		case "rate_limited":
			status = http.StatusTooManyRequests
		case "timeout":
			status = http.StatusGatewayTimeout
		}
		writeJSON(w, status, errorResponse{Error: marketErr.UserMessage, Kind: marketErr.Kind})
	case apperrors.As(err, &remoteErr):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: remoteErr.Message, Kind: "remote"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func decodeJSON(r *http.Request, target interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return apperrors.NewValidationError("body", nil, "invalid JSON body")
	}
	return nil
}

// authMiddleware resolves the bearer token to a user and stores it on the
// request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.auth.CurrentUser(r.Context(), bearerToken(r))
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	// Websocket clients cannot set headers from a browser.
	return r.URL.Query().Get("token")
}

func currentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(userKey).(*models.User)
	return user
}
