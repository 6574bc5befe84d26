package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/papertrade-io/papertrade/internal/interfaces"
	"github.com/papertrade-io/papertrade/internal/models"
)

const bcryptCost = 10

// hashPassword hashes a password with bcrypt. bcrypt only uses the first
// 72 bytes, so longer passwords are truncated before hashing.
func hashPassword(password string) (string, error) {
	b := []byte(password)
	if len(b) > 72 {
		b = b[:72]
	}
	hash, err := bcrypt.GenerateFromPassword(b, bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// checkPassword compares a password against its bcrypt hash.
func checkPassword(hash, password string) bool {
	b := []byte(password)
	if len(b) > 72 {
		b = b[:72]
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), b) == nil
}

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// handleSignup handles POST /auth/signup — create an account and return a token.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req signupRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	ctx := r.Context()

	if _, err := s.app.Store.GetUserByEmail(ctx, req.Email); err == nil {
		WriteErrorWithCode(w, http.StatusConflict, "Email already registered", "email_taken")
		return
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		s.logger.Error().Err(err).Msg("Signup email lookup failed")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Password hashing failed")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user := &models.User{
		ID:             uuid.New().String(),
		Name:           req.Name,
		Email:          req.Email,
		PasswordHash:   hash,
		VirtualBalance: s.app.Config.Trading.StartingBalance,
		CreatedAt:      time.Now(),
	}
	if err := s.app.Store.SaveUser(ctx, user); err != nil {
		s.logger.Error().Err(err).Msg("Failed to save new user")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := s.app.Tokens.Issue(user.Email, user.Name)
	if err != nil {
		s.logger.Error().Err(err).Msg("Token signing failed")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Msg("User registered")
	WriteJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

// handleLogin handles POST /auth/login — verify credentials and return a token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	user, err := s.app.Store.GetUserByEmail(r.Context(), req.Email)
	if err != nil || !checkPassword(user.PasswordHash, req.Password) {
		// Same response for unknown email and wrong password.
		WriteError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := s.app.Tokens.Issue(user.Email, user.Name)
	if err != nil {
		s.logger.Error().Err(err).Msg("Token signing failed")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Msg("User logged in")
	WriteJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}
