package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"college-portal-api/models"

	"github.com/google/uuid"
)

// ObjectStore is the blob layer behind document collections.
type ObjectStore interface {
	GetObject(ctx context.Context, objectPath string) ([]byte, error)
	PutObject(ctx context.Context, objectPath string, data []byte) error
}

// Document is a record with a natural key and a storage-assigned id.
type Document[T any] interface {
	NaturalKey() string
	DocID() string
	WithDocID(id string) T
}

// CollectionPath is the object holding the whole collection as a JSON array.
func CollectionPath(collection string) string {
	return fmt.Sprintf("collections/%s.json", collection)
}

// ListDocuments loads a collection. A missing collection is empty.
func ListDocuments[T any](ctx context.Context, store ObjectStore, collection string) ([]T, error) {
	data, err := store.GetObject(ctx, CollectionPath(collection))
	if errors.Is(err, ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load collection %s: %w", collection, err)
	}

	docs := make([]T, 0)
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode collection %s: %w", collection, err)
	}
	return docs, nil
}

// UpsertDocuments merges incoming records into a collection by natural key.
// A match keeps its stored id and is replaced in place; anything else is
// appended with a fresh id.
func UpsertDocuments[T Document[T]](ctx context.Context, store ObjectStore, collection string, incoming []T) (*models.UpsertSummary, error) {
	existing, err := ListDocuments[T](ctx, store, collection)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(existing))
	for i, doc := range existing {
		index[documentKey(doc.NaturalKey())] = i
	}

	summary := &models.UpsertSummary{Collection: collection}
	for _, doc := range incoming {
		key := documentKey(doc.NaturalKey())
		if i, ok := index[key]; ok {
			existing[i] = doc.WithDocID(existing[i].DocID())
			summary.Updated++
			continue
		}
		index[key] = len(existing)
		existing = append(existing, doc.WithDocID(uuid.NewString()))
		summary.Created++
	}

	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode collection %s: %w", collection, err)
	}
	if err := store.PutObject(ctx, CollectionPath(collection), data); err != nil {
		return nil, fmt.Errorf("failed to save collection %s: %w", collection, err)
	}

	summary.Total = len(existing)
	return summary, nil
}

func documentKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
