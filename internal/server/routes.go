package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/kilimobot/kilimobot/internal/channels"
	"github.com/kilimobot/kilimobot/internal/config"
	"github.com/kilimobot/kilimobot/internal/geo"
	"github.com/kilimobot/kilimobot/internal/store"
)

type chatRequest struct {
	Identity string `json:"identity"`
	Message  string `json:"message"`
	Language string `json:"language,omitempty"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// handleChat is the web channel: one request, one reply. The only error
// this endpoint reports over HTTP is a missing required field; everything
// downstream degrades to an apologetic 200.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Identity) == "" || strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "identity and message are required"})
		return
	}

	reply := s.processor.ProcessInbound(r.Context(), channels.InboundMessage{
		Channel:  channels.ChannelWeb,
		Identity: req.Identity,
		Content:  req.Message,
		Language: config.Language(req.Language),
	})
	writeJSON(w, http.StatusOK, chatResponse{Response: reply})
}

type historyResponse struct {
	Messages []store.Message `json:"messages"`
}

// handleHistory returns the recent conversation for an identity. Unknown
// identities get an empty list, never a 404.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	identity := r.URL.Query().Get("identity")
	if identity == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "identity is required"})
		return
	}

	msgs, err := s.store.LastMessages(r.Context(), identity, 50)
	if err != nil {
		writeJSON(w, http.StatusOK, historyResponse{Messages: []store.Message{}})
		return
	}
	if msgs == nil {
		msgs = []store.Message{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Messages: msgs})
}

type locationRequest struct {
	Identity  string   `json:"identity"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type locationResponse struct {
	Success bool   `json:"success"`
	County  string `json:"county,omitempty"`
	Message string `json:"message"`
}

// handleLocation records a user's coordinates and resolves their county.
func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if req.Identity == "" || req.Latitude == nil || req.Longitude == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "identity, latitude and longitude are required"})
		return
	}

	county := geo.NearestCounty(*req.Latitude, *req.Longitude)
	err := s.store.UpdateLocation(r.Context(), req.Identity, *req.Latitude, *req.Longitude, county)
	if errors.Is(err, store.ErrUserNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown identity"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusOK, locationResponse{Success: false, Message: "location could not be saved, try again later"})
		return
	}

	msg := "location updated"
	if county != "" {
		msg = "location updated, county set to " + county
	}
	writeJSON(w, http.StatusOK, locationResponse{Success: true, County: county, Message: msg})
}
