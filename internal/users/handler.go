package users

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

type Handler struct {
	directory *Directory
	logger    *slog.Logger
}

func NewHandler(directory *Directory, logger *slog.Logger) *Handler {
	return &Handler{
		directory: directory,
		logger:    logger,
	}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.directory.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserExists):
			h.writeError(w, http.StatusConflict, "User already exists")
		case errors.Is(err, ErrInvalidUser):
			h.writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to create user", "error", err)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.logger.Info("user created", "user_id", user.UserID)
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user":    user.Profile(),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.directory.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownEmail):
			h.writeError(w, http.StatusUnauthorized, "User doesn't exist. Please sign up.")
		case errors.Is(err, ErrWrongPassword):
			h.writeError(w, http.StatusUnauthorized, "Password is incorrect.")
		default:
			h.logger.Error("failed to log in", "error", err)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    profile,
	})
}

func (h *Handler) HandleListCustomers(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.directory.Customers(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"users": profiles})
}

func (h *Handler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.directory.All(r.Context())
	if err != nil {
		h.logger.Error("failed to list all users", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"users": profiles})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
