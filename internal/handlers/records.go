package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"notesync/internal/contextutil"
	"notesync/internal/embedsync"
	"notesync/internal/storage"
)

// RecordsHandler exposes the content record store over HTTP: the write surface used by
// the UI layer and the manual reprocess trigger.
type RecordsHandler struct {
	records storage.RecordStore
	engine  embedsync.Engine
}

// NewRecordsHandler creates a new RecordsHandler.
func NewRecordsHandler(records storage.RecordStore, engine embedsync.Engine) *RecordsHandler {
	return &RecordsHandler{records: records, engine: engine}
}

// RecordRequest is the body of a record write.
//
// swagger:model RecordRequest
type RecordRequest struct {
	RecordType string `json:"recordType"`
	Title      string `json:"title"`
	Text       string `json:"text"`
	Format     string `json:"format,omitempty"`
	FileName   string `json:"fileName,omitempty"`
	FileSize   int64  `json:"fileSize,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
}

// RecordResponse is a stored record with its embedding state.
//
// swagger:model RecordResponse
type RecordResponse struct {
	AppID                string     `json:"appId"`
	UserID               string     `json:"userId"`
	RecordID             string     `json:"recordId"`
	RecordType           string     `json:"recordType"`
	Title                string     `json:"title"`
	Text                 string     `json:"text"`
	Format               string     `json:"format"`
	FileName             string     `json:"fileName,omitempty"`
	FileSize             int64      `json:"fileSize,omitempty"`
	MimeType             string     `json:"mimeType,omitempty"`
	EmbeddingStatus      string     `json:"embeddingStatus"`
	EmbeddingError       string     `json:"embeddingError,omitempty"`
	EmbeddingLastUpdated *time.Time `json:"embeddingLastUpdated,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

func newRecordResponse(rec *storage.Record) RecordResponse {
	resp := RecordResponse{
		AppID:           rec.TenantID,
		UserID:          rec.UserID,
		RecordID:        rec.RecordID,
		RecordType:      string(rec.Type),
		Title:           rec.Title,
		Text:            rec.Text,
		Format:          string(rec.Format),
		FileName:        rec.FileName,
		FileSize:        rec.FileSize,
		MimeType:        rec.MimeType,
		EmbeddingStatus: string(rec.EmbeddingStatus),
		EmbeddingError:  rec.EmbeddingError,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
	if !rec.EmbeddingLastUpdated.IsZero() {
		t := rec.EmbeddingLastUpdated
		resp.EmbeddingLastUpdated = &t
	}
	return resp
}

// recordKey reads the record key from the chi route parameters.
func recordKey(r *http.Request) storage.Key {
	return storage.Key{
		TenantID: chi.URLParam(r, "tenantID"),
		UserID:   chi.URLParam(r, "userID"),
		RecordID: chi.URLParam(r, "recordID"),
	}
}

// Put creates or replaces a record.
//
// swagger:route PUT /api/v1/records/{tenantID}/{userID}/{recordID} putRecord
func (h *RecordsHandler) Put(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req RecordRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	rec, err := h.records.Upsert(ctx, &storage.Record{
		Key:      recordKey(r),
		Type:     storage.RecordType(req.RecordType),
		Title:    req.Title,
		Text:     req.Text,
		Format:   storage.Format(req.Format),
		FileName: req.FileName,
		FileSize: req.FileSize,
		MimeType: req.MimeType,
	})
	if err != nil {
		h.handleStoreError(w, r, err, "Failed to save record")
		return
	}

	if err := writeJSON(w, http.StatusOK, newRecordResponse(rec)); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// Get returns a record with its embedding status.
//
// swagger:route GET /api/v1/records/{tenantID}/{userID}/{recordID} getRecord
func (h *RecordsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rec, err := h.records.Get(ctx, recordKey(r))
	if err != nil {
		h.handleStoreError(w, r, err, "Failed to load record")
		return
	}

	if err := writeJSON(w, http.StatusOK, newRecordResponse(rec)); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// Delete removes a record. Its vector is removed by the change feed.
//
// swagger:route DELETE /api/v1/records/{tenantID}/{userID}/{recordID} deleteRecord
func (h *RecordsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.records.Delete(r.Context(), recordKey(r)); err != nil {
		h.handleStoreError(w, r, err, "Failed to delete record")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reprocess re-embeds a record synchronously, even if its text is unchanged.
// With ?force=true a record stuck in processing is taken over.
//
// swagger:route POST /api/v1/records/{tenantID}/{userID}/{recordID}/reprocess reprocessRecord
//
// responses:
//
//	'200':
//	  description: Record re-embedded
//	'404':
//	  description: Record not found
//	'409':
//	  description: An embedding attempt is already in flight
//	'422':
//	  description: Record has no text to embed
//	'502':
//	  description: Embedding or indexing failed; the failure is recorded on the record
func (h *RecordsHandler) Reprocess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	key := recordKey(r)

	force := false
	if raw := r.URL.Query().Get("force"); raw != "" {
		var err error
		if force, err = strconv.ParseBool(raw); err != nil {
			writeError(w, http.StatusBadRequest, "force must be a boolean", "")
			return
		}
	}

	if err := h.engine.Reprocess(ctx, key, force); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, "Record not found", "")
		case errors.Is(err, embedsync.ErrInFlight):
			writeError(w, http.StatusConflict, "Embedding already in progress", "retry with force=true to take over")
		case errors.Is(err, embedsync.ErrStale):
			writeError(w, http.StatusConflict, "Record changed during embedding", "the new text is embedded by the change feed")
		case errors.Is(err, embedsync.ErrNothingToEmbed):
			writeError(w, http.StatusUnprocessableEntity, "Record has no text to embed", "")
		default:
			logger.ErrorContext(ctx, "reprocess failed", "document_id", key.DocumentID(), "error", err)
			writeError(w, http.StatusBadGateway, "Reprocessing failed", err.Error())
		}
		return
	}

	h.Get(w, r)
}

// handleStoreError maps storage errors to HTTP status codes.
func (h *RecordsHandler) handleStoreError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	ctx := r.Context()

	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "Record not found", "")
	case errors.Is(err, storage.ErrInvalidRecord):
		writeError(w, http.StatusBadRequest, err.Error(), "")
	default:
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "record store error", "error", err)
		writeError(w, http.StatusInternalServerError, defaultMsg, "")
	}
}
