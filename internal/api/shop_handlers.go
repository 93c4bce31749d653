package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/lingvolab/lingvo/internal/app/progression"
)

func (s *Server) handleShopBuy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Item string `json:"item"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.engine.Purchase(userID(r), progression.ShopItem(req.Item), time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleUpgradePro(w http.ResponseWriter, r *http.Request) {
	user, err := s.engine.UpgradePro(userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (s *Server) handleLoseHeart(w http.ResponseWriter, r *http.Request) {
	user, err := s.engine.LoseHeart(userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"hearts": user.Hearts, "user": user})
}

func (s *Server) handleWalletHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.engine.Ledger().History(userID(r), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}
