package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"notesync/internal/embedsync"
	engine_mocks "notesync/internal/embedsync/mocks"
	"notesync/internal/storage"
	storage_mocks "notesync/internal/storage/mocks"
)

var testKey = storage.Key{TenantID: "app1", UserID: "u1", RecordID: "n1"}

// withRecordKey attaches the chi route parameters for testKey.
func withRecordKey(r *http.Request) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("tenantID", testKey.TenantID)
	rctx.URLParams.Add("userID", testKey.UserID)
	rctx.URLParams.Add("recordID", testKey.RecordID)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func storedRecord(status storage.EmbeddingStatus) *storage.Record {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := &storage.Record{
		Key:             testKey,
		Type:            storage.RecordTypeNote,
		Title:           "Trip",
		Text:            "<p>Paris is beautiful</p>",
		Format:          storage.FormatHTML,
		EmbeddingStatus: status,
		CreatedAt:       at,
		UpdatedAt:       at,
	}
	if status == storage.StatusCompleted {
		rec.EmbeddingLastUpdated = at.Add(time.Second)
	}
	return rec
}

func TestRecordsHandler_Put(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		mockSetup  func(*storage_mocks.MockRecordStore)
		wantStatus int
	}{
		{
			name: "creates record",
			body: `{"recordType":"note","title":"Trip","text":"<p>Paris is beautiful</p>"}`,
			mockSetup: func(m *storage_mocks.MockRecordStore) {
				m.EXPECT().Upsert(gomock.Any(), &storage.Record{
					Key:   testKey,
					Type:  storage.RecordTypeNote,
					Title: "Trip",
					Text:  "<p>Paris is beautiful</p>",
				}).Return(storedRecord(storage.StatusIdle), nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid JSON",
			body:       `{"recordType":`,
			mockSetup:  func(m *storage_mocks.MockRecordStore) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "invalid record",
			body: `{"recordType":"image"}`,
			mockSetup: func(m *storage_mocks.MockRecordStore) {
				m.EXPECT().Upsert(gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("%w: unknown record type", storage.ErrInvalidRecord))
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "store failure",
			body: `{"recordType":"note","text":"x"}`,
			mockSetup: func(m *storage_mocks.MockRecordStore) {
				m.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil, errors.New("disk full"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			records := storage_mocks.NewMockRecordStore(ctrl)
			tt.mockSetup(records)
			handler := NewRecordsHandler(records, engine_mocks.NewMockEngine(ctrl))

			req := withRecordKey(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(tt.body)))
			w := httptest.NewRecorder()
			handler.Put(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestRecordsHandler_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	records := storage_mocks.NewMockRecordStore(ctrl)
	handler := NewRecordsHandler(records, engine_mocks.NewMockEngine(ctrl))

	failed := storedRecord(storage.StatusFailed)
	failed.EmbeddingError = "embedding failed: timeout"
	records.EXPECT().Get(gomock.Any(), testKey).Return(failed, nil)

	w := httptest.NewRecorder()
	handler.Get(w, withRecordKey(httptest.NewRequest(http.MethodGet, "/", nil)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp RecordResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.EmbeddingStatus != "failed" || resp.EmbeddingError != "embedding failed: timeout" {
		t.Errorf("response = %+v", resp)
	}
	if resp.EmbeddingLastUpdated != nil {
		t.Errorf("EmbeddingLastUpdated = %v, want omitted", resp.EmbeddingLastUpdated)
	}
	if resp.AppID != "app1" || resp.RecordID != "n1" {
		t.Errorf("key fields = %s/%s", resp.AppID, resp.RecordID)
	}
}

func TestRecordsHandler_GetMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	records := storage_mocks.NewMockRecordStore(ctrl)
	handler := NewRecordsHandler(records, engine_mocks.NewMockEngine(ctrl))

	records.EXPECT().Get(gomock.Any(), testKey).Return(nil, storage.ErrNotFound)

	w := httptest.NewRecorder()
	handler.Get(w, withRecordKey(httptest.NewRequest(http.MethodGet, "/", nil)))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestRecordsHandler_Delete(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"deleted", nil, http.StatusNoContent},
		{"missing", storage.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			records := storage_mocks.NewMockRecordStore(ctrl)
			records.EXPECT().Delete(gomock.Any(), testKey).Return(tt.err)
			handler := NewRecordsHandler(records, engine_mocks.NewMockEngine(ctrl))

			w := httptest.NewRecorder()
			handler.Delete(w, withRecordKey(httptest.NewRequest(http.MethodDelete, "/", nil)))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRecordsHandler_Reprocess(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantForce  bool
		engineErr  error
		skipEngine bool
		wantStatus int
	}{
		{name: "reprocessed", wantStatus: http.StatusOK},
		{name: "forced", query: "?force=true", wantForce: true, wantStatus: http.StatusOK},
		{name: "bad force flag", query: "?force=maybe", skipEngine: true, wantStatus: http.StatusBadRequest},
		{name: "missing record", engineErr: storage.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "in flight", engineErr: embedsync.ErrInFlight, wantStatus: http.StatusConflict},
		{name: "changed during embedding", engineErr: embedsync.ErrStale, wantStatus: http.StatusConflict},
		{name: "nothing to embed", engineErr: embedsync.ErrNothingToEmbed, wantStatus: http.StatusUnprocessableEntity},
		{name: "embedding failed", engineErr: errors.New("embedding failed: timeout"), wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			records := storage_mocks.NewMockRecordStore(ctrl)
			engine := engine_mocks.NewMockEngine(ctrl)
			handler := NewRecordsHandler(records, engine)

			if !tt.skipEngine {
				engine.EXPECT().Reprocess(gomock.Any(), testKey, tt.wantForce).Return(tt.engineErr)
			}
			if tt.wantStatus == http.StatusOK {
				records.EXPECT().Get(gomock.Any(), testKey).Return(storedRecord(storage.StatusCompleted), nil)
			}

			req := withRecordKey(httptest.NewRequest(http.MethodPost, "/reprocess"+tt.query, bytes.NewReader(nil)))
			w := httptest.NewRecorder()
			handler.Reprocess(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus == http.StatusOK {
				var resp RecordResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp.EmbeddingStatus != "completed" || resp.EmbeddingLastUpdated == nil {
					t.Errorf("response = %+v", resp)
				}
			}
		})
	}
}
