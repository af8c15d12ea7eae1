package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/petcare/rfid-gateway/internal/audit"
	apperrors "github.com/petcare/rfid-gateway/internal/errors"
	"github.com/petcare/rfid-gateway/internal/httputil"
	"github.com/petcare/rfid-gateway/internal/model"
	"github.com/petcare/rfid-gateway/internal/service"
	"github.com/petcare/rfid-gateway/internal/util"
)

type Gateway interface {
	StartPairing(ctx context.Context, petID, readerID string) (*model.PairingStatus, error)
	CancelPairing(ctx context.Context, readerID string) error
	PairingStatus(ctx context.Context, readerID string) (*model.PairingStatus, error)
	RegisterTagRead(ctx context.Context, read model.TagRead) *service.ReadResult
	HandleCheckIn(ctx context.Context, tagUID, readerID string) (*service.ReadResult, error)
	ResolveIdentity(ctx context.Context, tagUID string) (*model.Identity, error)
	LastTagRead() (*model.LastTagRead, bool)
	SetTagActive(ctx context.Context, tagUID string, active bool) (*model.Tag, error)
	TagsForPet(ctx context.Context, petID string) ([]model.Tag, error)
}

// Commander delivers control commands to readers.
type Commander interface {
	StartPairing(ctx context.Context, readerID, petID string) error
	CancelPairing(ctx context.Context, readerID string) error
	RequestStatus(ctx context.Context, readerID string) error
}

type RFIDHandler struct {
	gateway   Gateway
	commander Commander
}

func NewRFIDHandler(gateway Gateway, commander Commander) *RFIDHandler {
	return &RFIDHandler{
		gateway:   gateway,
		commander: commander,
	}
}

func (h *RFIDHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/pairing", h.StartPairing)
	r.Get("/pairing/{readerId}", h.PairingStatus)
	r.Delete("/pairing/{readerId}", h.CancelPairing)

	r.Get("/last-read", h.LastRead)

	r.Get("/tags/{tagUid}/identity", h.Identity)
	r.Patch("/tags/{tagUid}", h.UpdateTag)
	r.Get("/pets/{petId}/tags", h.PetTags)

	r.Post("/readers/{readerId}/register", h.RegisterTag)
	r.Post("/readers/{readerId}/checkin", h.CheckIn)
	r.Post("/readers/{readerId}/status-request", h.RequestStatus)

	return r
}

// POST /api/rfid/pairing
func (h *RFIDHandler) StartPairing(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PetID    string `json:"petId"`
		ReaderID string `json:"readerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	ctx := r.Context()

	status, err := h.gateway.StartPairing(ctx, req.PetID, req.ReaderID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:     audit.EventPairingStart,
		ReaderID: req.ReaderID,
		PetID:    req.PetID,
	})

	if err := h.commander.StartPairing(ctx, req.ReaderID, req.PetID); err != nil {
		log.Warn().Err(err).Str("readerId", req.ReaderID).Msg("start pairing command not delivered")
	}

	writeJSON(w, http.StatusOK, status)
}

// GET /api/rfid/pairing/{readerId}
func (h *RFIDHandler) PairingStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.gateway.PairingStatus(r.Context(), chi.URLParam(r, "readerId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// DELETE /api/rfid/pairing/{readerId}
func (h *RFIDHandler) CancelPairing(w http.ResponseWriter, r *http.Request) {
	readerID := chi.URLParam(r, "readerId")
	ctx := r.Context()

	if err := h.gateway.CancelPairing(ctx, readerID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventPairingCancel, ReaderID: readerID})

	if err := h.commander.CancelPairing(ctx, readerID); err != nil {
		log.Warn().Err(err).Str("readerId", readerID).Msg("cancel pairing command not delivered")
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// GET /api/rfid/last-read
// Polled by front-desk screens that are not connected to the broker.
func (h *RFIDHandler) LastRead(w http.ResponseWriter, r *http.Request) {
	last, ok := h.gateway.LastTagRead()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, last)
}

// GET /api/rfid/tags/{tagUid}/identity
func (h *RFIDHandler) Identity(w http.ResponseWriter, r *http.Request) {
	identity, err := h.gateway.ResolveIdentity(r.Context(), chi.URLParam(r, "tagUid"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

// PATCH /api/rfid/tags/{tagUid}
func (h *RFIDHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Active *bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if req.Active == nil {
		httputil.WriteError(w, apperrors.MissingRequired("active"))
		return
	}

	tag, err := h.gateway.SetTagActive(r.Context(), chi.URLParam(r, "tagUid"), *req.Active)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	eventType := audit.EventTagDeactivated
	if tag.Active {
		eventType = audit.EventTagActivated
	}
	audit.LogFromRequest(r, audit.Event{Type: eventType, PetID: tag.PetID, TagUID: tag.TagUID})

	writeJSON(w, http.StatusOK, tag)
}

// GET /api/rfid/pets/{petId}/tags
func (h *RFIDHandler) PetTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.gateway.TagsForPet(r.Context(), chi.URLParam(r, "petId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

// POST /api/rfid/readers/{readerId}/register
// Enrolls a tag through the reader's live pairing session without a physical scan.
func (h *RFIDHandler) RegisterTag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TagUID string `json:"tagUid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	result := h.gateway.RegisterTagRead(r.Context(), model.TagRead{
		TagUID:   req.TagUID,
		ReaderID: chi.URLParam(r, "readerId"),
	})

	status := http.StatusCreated
	if err := result.Err(); err != nil {
		status = httputil.StatusFromCode(apperrors.GetCode(err))
	}
	writeJSON(w, status, result)
}

// POST /api/rfid/readers/{readerId}/checkin
// Front-desk fallback when a reader cannot reach the broker: the UID is typed
// in and resolved as if it had been scanned on that reader.
func (h *RFIDHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TagUID string `json:"tagUid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	result, err := h.gateway.HandleCheckIn(r.Context(), req.TagUID, chi.URLParam(r, "readerId"))

	status := http.StatusOK
	if err != nil {
		status = httputil.StatusFromCode(apperrors.GetCode(err))
	}
	writeJSON(w, status, result)
}

// POST /api/rfid/readers/{readerId}/status-request
func (h *RFIDHandler) RequestStatus(w http.ResponseWriter, r *http.Request) {
	readerID := chi.URLParam(r, "readerId")
	if !util.IsValidReaderID(readerID) {
		httputil.WriteError(w, apperrors.InvalidInput("readerId", "must be 1-64 letters, digits or . _ : -"))
		return
	}

	if err := h.commander.RequestStatus(r.Context(), readerID); err != nil {
		httputil.WriteError(w, apperrors.External("broker", err))
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"success": true})
}
