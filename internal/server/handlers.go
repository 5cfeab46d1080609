package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/synthetix-ai/drafter/internal/domain"
	"github.com/synthetix-ai/drafter/internal/drafts"
	pkgerrors "github.com/synthetix-ai/drafter/pkg/errors"
)

type draftsResponse struct {
	Drafts []domain.DraftRecord `json:"drafts"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		s.logger.Error("Failed to write response", "Error", err)
	}
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	authenticated, err := s.composer.IsAuthenticated(r.Context())
	if err != nil {
		s.logger.Warn("Session probe failed", "error", err)
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"authenticated": authenticated})
}

type generateRequest struct {
	Idea string `json:"idea"`
	Tone string `json:"tone"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow(clientKey(r)) {
		s.writeError(w, http.StatusTooManyRequests, "too many generation requests, slow down")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	tone, err := domain.ParseTone(req.Tone)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.composer.Generate(r.Context(), req.Idea, tone)
	if err != nil {
		s.logger.Error("Generation failed", "error", err)
		switch {
		case pkgerrors.IsMissingCredential(err):
			s.writeError(w, http.StatusUnauthorized, "no provider credential available; supply an API key or session token")
		case pkgerrors.Is(err, pkgerrors.ErrInvalidInput):
			s.writeError(w, http.StatusBadRequest, pkgerrors.GetMessage(err))
		case pkgerrors.IsExhaustedFallback(err):
			s.writeError(w, http.StatusBadGateway, "failed to generate drafts, please try again")
		default:
			s.writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	s.writeJSON(w, http.StatusOK, draftsResponse{Drafts: records})
}

func (s *Server) handleDrafts(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, draftsResponse{Drafts: s.composer.Snapshot()})
}

type editContentRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleEditContent(w http.ResponseWriter, r *http.Request) {
	platform, ok := s.platformFromPath(w, r)
	if !ok {
		return
	}

	var req editContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	records, err := s.composer.EditContent(platform, req.Content)
	if err != nil {
		if errors.Is(err, drafts.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.writeJSON(w, http.StatusOK, draftsResponse{Drafts: records})
}

type requestImageRequest struct {
	AspectRatio string `json:"aspectRatio"`
	Size        string `json:"size"`
}

func (s *Server) handleRequestImage(w http.ResponseWriter, r *http.Request) {
	platform, ok := s.platformFromPath(w, r)
	if !ok {
		return
	}

	var req requestImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var ratio domain.AspectRatio
	if req.AspectRatio != "" {
		parsed, err := domain.ParseAspectRatio(req.AspectRatio)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		ratio = parsed
	}

	size := domain.Size1K
	if req.Size != "" {
		parsed, err := domain.ParseImageSize(req.Size)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		size = parsed
	}

	if err := s.composer.RequestImage(r.Context(), platform, ratio, size); err != nil {
		if errors.Is(err, drafts.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logger.Error("Image request failed", "platform", platform, "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "generating"})
}

func (s *Server) handleRequestSpeech(w http.ResponseWriter, r *http.Request) {
	platform, ok := s.platformFromPath(w, r)
	if !ok {
		return
	}

	audioURL, err := s.composer.RequestSpeech(r.Context(), platform)
	if err != nil {
		switch {
		case errors.Is(err, drafts.ErrNotFound):
			s.writeError(w, http.StatusNotFound, err.Error())
		case pkgerrors.IsMissingCredential(err):
			s.writeError(w, http.StatusUnauthorized, "speech requires an authenticated session")
		default:
			s.logger.Error("Speech request failed", "platform", platform, "error", err)
			s.writeError(w, http.StatusBadGateway, "failed to synthesize speech")
		}
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"audioUrl": audioURL})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			s.writeError(w, http.StatusBadRequest, "limit must be an integer between 1 and 100")
			return
		}
		limit = parsed
	}

	batches, err := s.composer.History(r.Context(), limit)
	if err != nil {
		s.logger.Error("History query failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"batches": batches})
}

func (s *Server) platformFromPath(w http.ResponseWriter, r *http.Request) (domain.Platform, bool) {
	platform, err := domain.ParsePlatform(r.PathValue("platform"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return platform, true
}
