package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks notesync/internal/vectorstore VectorStore

import (
	"context"

	"github.com/google/uuid"
)

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a search result from vector search.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// SearchParams narrows a similarity search.
type SearchParams struct {
	// Limit is the maximum number of results. Must be greater than 0.
	Limit int
	// ScoreThreshold drops results with a lower similarity. 0 disables it.
	ScoreThreshold float32
	// Filters are exact keyword matches on payload fields, all of which must hold.
	Filters map[string]string
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search performs a similarity search, best match first.
	Search(ctx context.Context, collection string, query []float32, params SearchParams) ([]SearchResult, error)

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []string) error
}

// PointID maps an application document ID to the point ID stored in the vector store.
// Qdrant only accepts UUIDs and integers, so the ID is the name-based UUID of documentID.
func PointID(documentID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(documentID)).String()
}
