package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/kozaktomas/face-roster/internal/fingerprint"
	"github.com/kozaktomas/face-roster/internal/imaging"
	"github.com/kozaktomas/face-roster/internal/match"
	"github.com/kozaktomas/face-roster/internal/roster"
)

// Response status values, part of the wire contract with the mobile app.
const (
	StatusMatch   = "coincidencia_encontrada"
	StatusNoMatch = "sin_coincidencias"
)

// RecognitionHandler runs the per-request pipeline: decode the submitted
// photo, detect faces, match each one against the roster, filter by the
// similarity threshold.
type RecognitionHandler struct {
	provider     fingerprint.Provider
	roster       *roster.Roster
	engine       *match.Engine
	maxBodyBytes int64
	maxImageSize int
}

// NewRecognitionHandler wires the handler. The roster is read-only for the
// process lifetime, so it is shared across requests without locking.
func NewRecognitionHandler(provider fingerprint.Provider, ros *roster.Roster, engine *match.Engine, maxBodyBytes int64, maxImageSize int) *RecognitionHandler {
	return &RecognitionHandler{
		provider:     provider,
		roster:       ros,
		engine:       engine,
		maxBodyBytes: maxBodyBytes,
		maxImageSize: maxImageSize,
	}
}

type recognizeRequest struct {
	Image string `json:"image"`
}

type recognizeResponse struct {
	Status   string                 `json:"status"`
	Personas []roster.MatchedPerson `json:"personas,omitempty"`
}

// Recognize handles POST /reconocer.
func (h *RecognitionHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req recognizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Image == "" {
		respondError(w, http.StatusBadRequest, "missing 'image' field")
		return
	}

	rawImage, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		respondError(w, http.StatusBadRequest, "'image' is not valid base64")
		return
	}

	normalized, err := imaging.Normalize(rawImage, h.maxImageSize)
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not decode image")
		return
	}

	// Degraded mode: with no roster loaded, every request is a clean no-match.
	if h.roster.Len() == 0 {
		log.Printf("recognition request with empty roster, returning no match")
		respondJSON(w, http.StatusOK, recognizeResponse{Status: StatusNoMatch})
		return
	}

	faces, err := h.provider.DetectFaces(r.Context(), normalized)
	if err != nil {
		log.Printf("embedding provider error: %v", err)
		respondError(w, http.StatusBadGateway, "face detection unavailable")
		return
	}
	log.Printf("detected %d face(s) in submitted image", len(faces.Faces))

	matches := make([]roster.MatchedPerson, 0, len(faces.Faces))
	for _, face := range faces.Faces {
		result, ok := h.engine.Match(face.Embedding)
		if !ok {
			continue
		}

		candidate := h.roster.Person(result.Index)
		log.Printf("best candidate %q distance=%.4f similarity=%.2f%%",
			sanitizeForLog(candidate.Name), result.Distance, result.Similarity)

		if result.Matched {
			matches = append(matches, candidate.Matched(result.Similarity))
		}
	}

	if len(matches) > 0 {
		respondJSON(w, http.StatusOK, recognizeResponse{Status: StatusMatch, Personas: matches})
		return
	}
	respondJSON(w, http.StatusOK, recognizeResponse{Status: StatusNoMatch})
}
