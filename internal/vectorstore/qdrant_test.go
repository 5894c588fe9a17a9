package vectorstore

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

func TestGRPCAddress(t *testing.T) {
	tests := []struct {
		name     string
		urlStr   string
		wantErr  bool
		wantHost string
		wantPort int
	}{
		{
			name:     "default HTTP port",
			urlStr:   "http://localhost:6333",
			wantHost: "localhost",
			wantPort: 6334,
		},
		{
			name:     "custom port",
			urlStr:   "http://qdrant.internal:9000",
			wantHost: "qdrant.internal",
			wantPort: 9001,
		},
		{
			name:     "no port",
			urlStr:   "http://localhost",
			wantHost: "localhost",
			wantPort: 6334,
		},
		{
			name:     "no hostname",
			urlStr:   "http://:6333",
			wantHost: "localhost",
			wantPort: 6334,
		},
		{
			name:    "invalid URL",
			urlStr:  "://invalid",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, err := grpcAddress(tt.urlStr)
			if tt.wantErr {
				if err == nil {
					t.Error("grpcAddress() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("grpcAddress() error = %v", err)
			}
			if host != tt.wantHost || port != tt.wantPort {
				t.Errorf("grpcAddress() = %s:%d, want %s:%d", host, port, tt.wantHost, tt.wantPort)
			}
		})
	}
}

func TestNewQdrantStore_InvalidURL(t *testing.T) {
	if _, err := NewQdrantStore("://invalid"); err == nil {
		t.Error("NewQdrantStore() with invalid URL should return error")
	}
}

// The early returns below never touch the client, so a zero store is enough.

func TestQdrantStore_Upsert_EmptyPoints(t *testing.T) {
	store := &QdrantStore{}
	if err := store.Upsert(context.Background(), "documents", nil); err != nil {
		t.Errorf("Upsert() with no points should return nil, got %v", err)
	}
}

func TestQdrantStore_Delete_EmptyIDs(t *testing.T) {
	store := &QdrantStore{}
	if err := store.Delete(context.Background(), "documents", []string{}); err != nil {
		t.Errorf("Delete() with no IDs should return nil, got %v", err)
	}
}

func TestQdrantStore_Search_InvalidLimit(t *testing.T) {
	store := &QdrantStore{}
	for _, limit := range []int{0, -1} {
		if _, err := store.Search(context.Background(), "documents", []float32{1, 2}, SearchParams{Limit: limit}); err == nil {
			t.Errorf("Search() with limit %d should return error", limit)
		}
	}
}

func TestBuildFilter(t *testing.T) {
	if f := buildFilter(nil); f != nil {
		t.Errorf("buildFilter(nil) = %v, want nil", f)
	}

	f := buildFilter(map[string]string{"user_id": "u1", "app_id": "app1"})
	if len(f.Must) != 2 {
		t.Fatalf("buildFilter() must conditions = %d, want 2", len(f.Must))
	}

	wantFields := []string{"app_id", "user_id"}
	wantValues := []string{"app1", "u1"}
	for i, cond := range f.Must {
		field := cond.GetField()
		if field.GetKey() != wantFields[i] {
			t.Errorf("condition %d key = %q, want %q", i, field.GetKey(), wantFields[i])
		}
		if field.GetMatch().GetKeyword() != wantValues[i] {
			t.Errorf("condition %d keyword = %q, want %q", i, field.GetMatch().GetKeyword(), wantValues[i])
		}
	}
}

func TestPointID(t *testing.T) {
	a := PointID("app1_u1_note-1")
	if a != PointID("app1_u1_note-1") {
		t.Error("PointID() should be deterministic")
	}
	if a == PointID("app1_u1_note-2") {
		t.Error("PointID() should differ for different documents")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("PointID() = %q is not a UUID: %v", a, err)
	}
}

func TestConvertPayloadToMap(t *testing.T) {
	if got := convertPayloadToMap(nil); got == nil || len(got) != 0 {
		t.Errorf("convertPayloadToMap(nil) = %v, want empty map", got)
	}

	payload := qdrant.NewValueMap(map[string]any{
		"title":    "Trip",
		"count":    3,
		"score":    0.5,
		"archived": false,
		"metadata": map[string]any{"file_name": "trip.txt"},
	})

	got := convertPayloadToMap(payload)
	if got["title"] != "Trip" {
		t.Errorf("title = %v, want Trip", got["title"])
	}
	if got["count"] != int64(3) {
		t.Errorf("count = %v (%T), want int64 3", got["count"], got["count"])
	}
	if got["score"] != 0.5 {
		t.Errorf("score = %v, want 0.5", got["score"])
	}
	if got["archived"] != false {
		t.Errorf("archived = %v, want false", got["archived"])
	}
	meta, ok := got["metadata"].(map[string]any)
	if !ok || meta["file_name"] != "trip.txt" {
		t.Errorf("metadata = %v, want nested map", got["metadata"])
	}
}
