package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/lingvolab/lingvo/internal/domain"
)

// userPayload is what the client calls "the user": the account row plus
// the completion projections the roadmap screen needs.
type userPayload struct {
	domain.User
	CompletedLessons []string                `json:"completedLessons"`
	Progress         []domain.ProgressRecord `json:"progress"`
}

func (s *Server) payloadFor(u domain.User) (userPayload, error) {
	completed, err := s.db.CompletedLessonIDs(u.ID)
	if err != nil {
		return userPayload{}, err
	}
	progress, err := s.db.ProgressForUser(u.ID)
	if err != nil {
		return userPayload{}, err
	}
	return userPayload{User: u, CompletedLessons: completed, Progress: progress}, nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Name == "" || len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "email, name and a password of at least 6 characters are required")
		return
	}

	user, token, err := s.auth.Register(req.Email, req.Name, req.Password, time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	payload, err := s.payloadFor(user)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"token": token,
		"user":  payload,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.auth.Authenticate(strings.TrimSpace(strings.ToLower(req.Email)), req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// A login is daily activity: it advances (or breaks) the streak and
	// refills hearts before the client sees the account.
	now := time.Now()
	user, _, err = s.engine.Touch(user.ID, now)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	token, err := s.auth.TokenFor(user.ID, now)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	payload, err := s.payloadFor(user)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  payload,
	})
}

// handleMe re-validates the session. Hearts refill lazily here, but the
// streak does not move: opening the app is not practice.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.engine.RefreshHearts(userID(r), time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	payload, err := s.payloadFor(user)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": payload})
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
		Goal string `json:"goal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := userID(r)
	cur, err := s.db.UserByID(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = cur.Name
	}
	user, err := s.db.UpdateProfile(id, name, req.Age, req.Goal, cur.Level)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// handlePlacement records the placement-test outcome: it sets the level
// directly instead of walking the promotion ladder.
func (s *Server) handlePlacement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Level domain.Level `json:"level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !domain.ValidLevel(req.Level) {
		writeDomainError(w, domain.ErrInvalidLevel)
		return
	}

	id := userID(r)
	cur, err := s.db.UserByID(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	user, err := s.db.UpdateProfile(id, cur.Name, cur.Age, cur.Goal, req.Level)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}
