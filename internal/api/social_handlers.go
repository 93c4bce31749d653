package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

func groupID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// handleQuickJoin drops the user into a study group with one tap: an
// existing membership wins, then any public group with room, then a
// freshly created one.
func (s *Server) handleQuickJoin(w http.ResponseWriter, r *http.Request) {
	group, err := s.social.QuickJoin(userID(r), time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"group": group})
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		Level      string `json:"level"`
		MaxMembers int    `json:"maxMembers"`
		IsPublic   *bool  `json:"isPublic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	group, err := s.social.Create(userID(r), req.Name, req.Level, req.MaxMembers, isPublic, time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"group": group})
}

func (s *Server) handleSearchGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.social.Search(r.URL.Query().Get("q"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": groups})
}

func (s *Server) handleAvailableGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.social.Available()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": groups})
}

func (s *Server) handleMyGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.social.MyGroups(userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": groups})
}

func (s *Server) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	gid, err := groupID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid group id")
		return
	}
	group, err := s.social.Join(userID(r), gid, time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"group": group})
}

func (s *Server) handleLeaveGroup(w http.ResponseWriter, r *http.Request) {
	gid, err := groupID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid group id")
		return
	}
	if err := s.social.Leave(userID(r), gid); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

func (s *Server) handleGroupMessages(w http.ResponseWriter, r *http.Request) {
	gid, err := groupID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid group id")
		return
	}
	messages, err := s.social.History(gid)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	gid, err := groupID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid group id")
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := s.social.Post(userID(r), gid, req.Content, time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.hub.Broadcast(msg)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"message": msg})
}

// handleChatStream serves the group chat as a Server-Sent-Events feed.
// Messages posted while connected arrive as "message" events; a comment
// heartbeat keeps idle proxies from cutting the stream.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	gid, err := groupID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid group id")
		return
	}
	member, err := s.db.IsMember(userID(r), gid)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !member {
		writeError(w, http.StatusForbidden, "not a member of this group")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	feed, unsubscribe := s.hub.Subscribe(gid)
	defer unsubscribe()

	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg, open := <-feed:
			if !open {
				return
			}
			writeSSE(w, "message", msg)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, event string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}
