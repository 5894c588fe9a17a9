// Package insight answers "what is related to this content, and what can be learned from it"
// for a single user: it embeds the query document, retrieves the user's similar records from
// the vector store and asks the generative model for insights across them.
package insight

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks notesync/internal/insight Embedder
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_generator.go -package=mocks notesync/internal/insight Generator
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_insight_service.go -package=mocks -mock_names=Service=MockInsightService notesync/internal/insight Service

import (
	"context"
	"errors"
	"strings"
	"time"

	"notesync/internal/contextutil"
	"notesync/internal/llm"
	"notesync/internal/markup"
	"notesync/internal/vectorstore"
)

// NoRelatedDocumentsMessage is returned as the insights text when nothing similar enough exists.
const NoRelatedDocumentsMessage = "No related documents found. Keep writing and connections will appear as your collection grows."

const (
	// PreviewLength is the number of characters of a related document shown in a connection.
	PreviewLength = 200

	generateTemperature = 0.3
	generateMaxTokens   = 500
)

// Embedder turns text into a vector.
// This interface is defined from the service layer's perspective (consumer-first).
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces text from a chat conversation.
type Generator interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// RateLimiter admits or rejects a user's request.
type RateLimiter interface {
	Allow(userID string) (ok bool, retryAfter time.Duration)
}

// Request is an insight request for one query document.
type Request struct {
	UserID   string
	TenantID string
	Title    string
	Content  string
}

// Connection is a related document found for the query.
type Connection struct {
	Title        string  `json:"title"`
	Similarity   float32 `json:"similarity"`
	DocumentType string  `json:"documentType"`
	Preview      string  `json:"preview"`
}

// Metadata describes how a response was produced.
type Metadata struct {
	QueryProcessedAt  time.Time `json:"queryProcessedAt"`
	DocumentsAnalyzed int       `json:"documentsAnalyzed"`
}

// Response holds the related documents and the generated insights.
type Response struct {
	Connections []Connection `json:"connections"`
	Insights    string       `json:"insights"`
	Metadata    Metadata     `json:"metadata"`
}

// Service finds connections between a query document and the user's stored records.
type Service interface {
	// FindConnections embeds req.Content, retrieves related records and generates insights.
	// It returns *ValidationError, *RateLimitError or an error wrapping ErrUpstream.
	FindConnections(ctx context.Context, req Request) (*Response, error)
}

// Config holds retrieval parameters and per-call timeouts.
type Config struct {
	Collection      string
	MatchThreshold  float32
	MatchCount      int
	EmbedTimeout    time.Duration
	VectorTimeout   time.Duration
	GenerateTimeout time.Duration
}

// insightService implements Service.
type insightService struct {
	embedder  Embedder
	vectors   vectorstore.VectorStore
	generator Generator
	limiter   RateLimiter
	cfg       Config
	now       func() time.Time
}

// NewService creates a new insight Service.
func NewService(embedder Embedder, vectors vectorstore.VectorStore, generator Generator, limiter RateLimiter, cfg Config) Service {
	if cfg.MatchThreshold == 0 {
		cfg.MatchThreshold = 0.8
	}
	if cfg.MatchCount <= 0 {
		cfg.MatchCount = 5
	}
	return &insightService{
		embedder:  embedder,
		vectors:   vectors,
		generator: generator,
		limiter:   limiter,
		cfg:       cfg,
		now:       time.Now,
	}
}

// FindConnections runs validate, rate-limit, embed, search, prompt and generate in order.
// The rate-limit slot stays consumed when a later step fails.
func (s *insightService) FindConnections(ctx context.Context, req Request) (*Response, error) {
	logger := contextutil.LoggerFromContext(ctx).With("user_id", req.UserID, "app_id", req.TenantID)

	if err := validate(req); err != nil {
		logger.WarnContext(ctx, "invalid insight request", "error", err)
		return nil, err
	}

	plain := markup.PlainText(req.Content)
	if plain == "" {
		logger.WarnContext(ctx, "insight request content has no text")
		return nil, &ValidationError{Field: "content", Message: "has no text"}
	}

	if ok, retryAfter := s.limiter.Allow(req.UserID); !ok {
		logger.InfoContext(ctx, "insight request rate limited", "retry_after", retryAfter)
		return nil, &RateLimitError{RetryAfter: retryAfter}
	}

	embedCtx, cancel := context.WithTimeout(ctx, s.cfg.EmbedTimeout)
	query, err := s.embedder.Embed(embedCtx, plain)
	cancel()
	if err == nil && len(query) == 0 {
		err = errors.New("empty embedding")
	}
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed query", "error", err)
		return nil, upstream("failed to embed query", err)
	}

	searchCtx, cancel := context.WithTimeout(ctx, s.cfg.VectorTimeout)
	results, err := s.vectors.Search(searchCtx, s.cfg.Collection, query, vectorstore.SearchParams{
		Limit:          s.cfg.MatchCount,
		ScoreThreshold: s.cfg.MatchThreshold,
		Filters:        map[string]string{"user_id": req.UserID},
	})
	cancel()
	if err != nil {
		logger.ErrorContext(ctx, "failed to search related documents", "error", err)
		return nil, upstream("failed to search related documents", err)
	}

	docs := relatedDocuments(results)
	logger.InfoContext(ctx, "related documents retrieved", "count", len(docs))

	if len(docs) == 0 {
		return &Response{
			Connections: []Connection{},
			Insights:    NoRelatedDocumentsMessage,
			Metadata:    Metadata{QueryProcessedAt: s.now().UTC()},
		}, nil
	}

	messages := buildMessages(req.Title, plain, docs)

	generateCtx, cancel := context.WithTimeout(ctx, s.cfg.GenerateTimeout)
	insights, err := s.generator.ChatWithMessages(generateCtx, messages, llm.ChatParams{
		MaxTokens:   generateMaxTokens,
		Temperature: generateTemperature,
	})
	cancel()
	if err != nil {
		logger.ErrorContext(ctx, "failed to generate insights", "error", err)
		return nil, upstream("failed to generate insights", err)
	}

	connections := make([]Connection, len(docs))
	for i, d := range docs {
		connections[i] = Connection{
			Title:        d.title,
			Similarity:   d.score,
			DocumentType: d.documentType,
			Preview:      truncate(d.content, PreviewLength),
		}
	}

	logger.InfoContext(ctx, "insights generated", "documents", len(docs), "insights_length", len(insights))
	return &Response{
		Connections: connections,
		Insights:    strings.TrimSpace(insights),
		Metadata: Metadata{
			QueryProcessedAt:  s.now().UTC(),
			DocumentsAnalyzed: len(docs),
		},
	}, nil
}

func validate(req Request) error {
	switch {
	case strings.TrimSpace(req.UserID) == "":
		return &ValidationError{Field: "userId", Message: "is required"}
	case strings.TrimSpace(req.TenantID) == "":
		return &ValidationError{Field: "appId", Message: "is required"}
	case strings.TrimSpace(req.Content) == "":
		return &ValidationError{Field: "content", Message: "is required"}
	}
	return nil
}

type relatedDocument struct {
	title        string
	content      string
	documentType string
	score        float32
}

func relatedDocuments(results []vectorstore.SearchResult) []relatedDocument {
	docs := make([]relatedDocument, 0, len(results))
	for _, r := range results {
		title, _ := r.Meta["title"].(string)
		content, _ := r.Meta["content"].(string)
		docType, _ := r.Meta["document_type"].(string)
		docs = append(docs, relatedDocument{
			title:        title,
			content:      content,
			documentType: docType,
			score:        r.Score,
		})
	}
	return docs
}

// truncate keeps the first n characters of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
