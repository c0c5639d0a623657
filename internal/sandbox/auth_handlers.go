package sandbox

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/form"
	"github.com/example/storefront/internal/sandbox/middleware"
	"github.com/example/storefront/internal/session"
	"github.com/google/uuid"
)

var ErrEmailTaken = errors.New("email already registered")

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name     string `json:"name" validate:"notblank"`
	Email    string `json:"email" validate:"notblank,email"`
	Password string `json:"password" validate:"notblank,min=8,maxbytes=72"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) createAccount(name, email, password string) (session.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return session.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeEmail(email)
	if _, exists := s.byEmail[key]; exists {
		return session.User{}, ErrEmailTaken
	}

	u := session.User{
		ID:    uuid.New().String(),
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
	}
	s.accounts[u.ID] = &account{user: u, passwordHash: hash}
	s.byEmail[key] = u.ID
	return u, nil
}

// Register handles user registration
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if err := form.Validate(req, nil); err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	u, err := s.createAccount(req.Name, req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrPasswordTooShort):
		respondJSONError(w, "Password must be at least 8 characters", http.StatusBadRequest)
		return
	case errors.Is(err, auth.ErrPasswordTooLong):
		respondJSONError(w, "Password must be at most 72 bytes", http.StatusBadRequest)
		return
	case errors.Is(err, ErrEmailTaken):
		respondJSONError(w, "Email already registered", http.StatusConflict)
		return
	case err != nil:
		log.Printf("[Sandbox] Error registering %s: %v", req.Email, err)
		respondJSONError(w, "Registration failed", http.StatusInternalServerError)
		return
	}

	token, err := s.issueToken(u)
	if err != nil {
		respondJSONError(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, session.AuthResult{Token: token, User: u})
}

// Login handles user login
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeBody(r, &req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	var acct *account
	hash := ""
	if id, ok := s.byEmail[normalizeEmail(req.Email)]; ok {
		acct = s.accounts[id]
		hash = acct.passwordHash
	}
	s.mu.RUnlock()

	if err := auth.ComparePassword(hash, req.Password); err != nil || acct == nil {
		respondJSONError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	token, err := s.issueToken(acct.user)
	if err != nil {
		respondJSONError(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, session.AuthResult{Token: token, User: acct.user})
}

// Logout revokes the presented token
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetUserFromContext(r.Context())

	s.mu.Lock()
	s.revoked[claims.ID] = true
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// Verify returns the user owning the presented token
func (s *Server) Verify(w http.ResponseWriter, r *http.Request) {
	u, ok := s.currentUser(r)
	if !ok {
		respondJSONError(w, "User not found", http.StatusUnauthorized)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := s.currentUser(r)
	if !ok {
		respondJSONError(w, "User not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (s *Server) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req session.ProfileUpdate
	if err := decodeBody(r, &req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	userID := middleware.GetUserID(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[userID]
	if !ok {
		respondJSONError(w, "User not found", http.StatusNotFound)
		return
	}

	newKey := normalizeEmail(req.Email)
	oldKey := normalizeEmail(acct.user.Email)
	if newKey != oldKey {
		if _, taken := s.byEmail[newKey]; taken {
			respondJSONError(w, "Email already registered", http.StatusConflict)
			return
		}
		delete(s.byEmail, oldKey)
		s.byEmail[newKey] = userID
	}

	acct.user = session.User{
		ID:      userID,
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   req.Phone,
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		ZipCode: req.ZipCode,
		Country: req.Country,
	}
	respondJSON(w, http.StatusOK, acct.user)
}

func (s *Server) currentUser(r *http.Request) (session.User, bool) {
	userID := middleware.GetUserID(r.Context())

	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[userID]
	if !ok {
		return session.User{}, false
	}
	return acct.user, true
}
