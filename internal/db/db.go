// Package db defines the storage contract the catalog repository consumes.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrKeyNotFound signals a missing key in the KV store.
var ErrKeyNotFound = errors.New("key not found")

// Operation names for error context.
const (
	OpSearch = "search"
	OpIndex  = "index"
	OpKV     = "kv"
)

// Error wraps a store failure with the operation that produced it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("db %s: %v", e.Op, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

// KNNQuery describes a filtered K-nearest-neighbor search.
type KNNQuery struct {
	IndexName string
	// Prefilter is an FT.SEARCH filter expression applied before the KNN
	// scan, or empty for the whole population.
	Prefilter    string
	Vector       []float32
	K            int
	ReturnFields []string
}

// TextQuery describes a filtered full-text search.
type TextQuery struct {
	IndexName string
	// TextFields are the searchable fields the terms apply to.
	TextFields   []string
	Terms        string
	Prefilter    string
	TopK         int
	ReturnFields []string
}

// SearchEntry is one raw hit. For KNN queries Score holds the raw index
// distance; for text queries it holds the relevance score.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// SearchResult is the raw outcome of an FT.SEARCH call.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// Store is the full storage contract: vector + text search over the listing
// index, KV with TTL for the embedding cache, and lifecycle management.
type Store interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchText(ctx context.Context, q *TextQuery) (*SearchResult, error)

	EnsureIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)

	Get(ctx context.Context, key string) ([]byte, error)
	SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Ping(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Close()
}
