package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/lingvolab/lingvo/internal/domain"
)

func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.db.Courses()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"courses": courses})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := s.db.Leaderboard(10)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": entries})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.db.ProgressForUser(userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"progress": progress})
}

func (s *Server) handleLessonComplete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LessonID string `json:"lessonId"`
		Score    int    `json:"score"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.LessonID) == "" {
		writeError(w, http.StatusBadRequest, "lessonId is required")
		return
	}

	res, err := s.engine.CompleteLesson(userID(r), req.LessonID, req.Score, time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// Advice generation runs after the reward commit so a slow or failing
	// model call can never cost the learner their lesson result.
	adviceQueued := false
	if s.advice.ShouldAdvise(res.User, res.FirstAttempt, len(res.CompletedLessons)) {
		s.advice.QueueLessonAdvice(res.User.ID, len(res.CompletedLessons))
		adviceQueued = true
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":             res.User,
		"gained":           res.Reward,
		"newBest":          res.NewBest,
		"isLevelComplete":  res.IsLevelComplete,
		"completedLessons": res.CompletedLessons,
		"progress":         res.Progress,
		"adviceQueued":     adviceQueued,
	})
}

func (s *Server) handlePromote(w http.ResponseWriter, r *http.Request) {
	user, err := s.engine.Promote(userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":  user,
		"bonus": domain.PromotionBonus,
	})
}

func (s *Server) handleLatestAdvice(w http.ResponseWriter, r *http.Request) {
	a, ok, err := s.advice.Latest(userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{"advice": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"advice": a})
}

func (s *Server) handleAIChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	user, err := s.db.UserByID(userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	reply, err := s.advice.Chat(r.Context(), user, req.Message)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reply": reply})
}

func (s *Server) handleAIAnalyze(w http.ResponseWriter, r *http.Request) {
	user, err := s.db.UserByID(userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	analysis, lessons, err := s.advice.Analyze(r.Context(), user)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"analysis":        analysis,
		"lessonsAnalyzed": lessons,
	})
}
