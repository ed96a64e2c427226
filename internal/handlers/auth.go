package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/lungsight/apiserver/internal/services"
	"github.com/lungsight/apiserver/internal/session"
	"github.com/lungsight/apiserver/internal/store"
)

const defaultTokenTTL = 24 * time.Hour

// AuthHandler provides the conversation-session and authentication endpoints.
// A session token identifies one conversation; signup and login flip that
// conversation's state to logged in.
type AuthHandler struct {
	userService *services.UserService
	sessions    *session.Store
	secret      []byte
	tokenTTL    time.Duration
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, sessions *session.Store, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		sessions:    sessions,
		secret:      []byte(jwtSecret),
		tokenTTL:    defaultTokenTTL,
	}
}

// AuthRouter registers session and auth routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler) {
	r.Post("/sessions", handler.CreateSession)
	r.With(handler.RequireSession).Get("/sessions/status", handler.Status)
	r.With(handler.RequireSession).Post("/auth/signup", handler.Signup)
	r.With(handler.RequireSession).Post("/auth/login", handler.Login)
}

// RequireSession enforces a valid session token and injects the session ID
// into the request context.
func (h *AuthHandler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := bearerToken(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		sessionID, err := parseTokenSubject(tokenString, h.secret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if _, err := h.sessions.Status(sessionID); err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), contextSessionKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireLogin enforces that the conversation has authenticated. Must be
// mounted inside RequireSession.
func (h *AuthHandler) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionIDFromContext(r.Context())
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		status, err := h.sessions.Status(sessionID)
		if err != nil || !status.LoggedIn {
			writeError(w, http.StatusUnauthorized, "user not logged in")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionStatus looks up the authentication snapshot for the request's
// conversation.
func (h *AuthHandler) SessionStatus(ctx context.Context) (session.Status, error) {
	sessionID, err := sessionIDFromContext(ctx)
	if err != nil {
		return session.Status{}, err
	}
	return h.sessions.Status(sessionID)
}

// CreateSession opens a new conversation and returns its token.
func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessions.Create()
	token, err := issueToken(sessionID, h.secret, h.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	writeJSON(w, http.StatusCreated, SessionResponse{Status: "success", Token: token})
}

// Status reports whether the conversation is authenticated.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.SessionStatus(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if status.LoggedIn {
		writeJSON(w, http.StatusOK, StatusResponse{
			Status:  "logged_in",
			UUID:    status.UUID,
			Message: "User is authenticated.",
		})
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:  "logged_out",
		Message: "User is NOT logged in.",
	})
}

// Signup creates a new account and logs the conversation in.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Gender = strings.TrimSpace(req.Gender)
	req.Username = strings.TrimSpace(req.Username)
	if req.FullName == "" || req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	user, err := h.userService.Register(r.Context(), req.FullName, req.Gender, req.Age, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			writeError(w, http.StatusConflict, "Username already exists.")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	sessionID, _ := sessionIDFromContext(r.Context())
	if err := h.sessions.Login(sessionID, user.UUID); err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Status:  "success",
		Message: fmt.Sprintf("Account created. Logged in as %s.", user.Username),
		UUID:    user.UUID,
	})
}

// Login verifies credentials and logs the conversation in.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			writeError(w, http.StatusUnauthorized, "Username not found.")
		case errors.Is(err, services.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "Incorrect password.")
		default:
			writeError(w, http.StatusInternalServerError, "failed to authenticate")
		}
		return
	}

	sessionID, _ := sessionIDFromContext(r.Context())
	if err := h.sessions.Login(sessionID, user.UUID); err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Status:  "success",
		Message: "Login successful.",
		UUID:    user.UUID,
	})
}

type SignupRequest struct {
	FullName string `json:"full_name"`
	Gender   string `json:"gender"`
	Age      int    `json:"age"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SessionResponse struct {
	Status string `json:"status"`
	Token  string `json:"token"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	UUID    string `json:"uuid,omitempty"`
	Message string `json:"message"`
}

type AuthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	UUID    string `json:"uuid"`
}

func issueToken(sessionID string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseTokenSubject(tokenString string, secret []byte) (string, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errors.New("missing subject")
	}
	return claims.Subject, nil
}

func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
