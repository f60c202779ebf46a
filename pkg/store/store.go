// Package store keeps scene documents by ID.
//
// Two backends implement [Store]:
//   - [FileStore] writes one JSON file per document into a directory
//   - [MongoStore] keeps documents in a MongoDB collection
//
// Both report NOT_FOUND through pkg/errors for unknown IDs and emit
// observability store events for every save and load.
package store

import (
	"context"
	"time"

	"github.com/matzehuels/haplonet/pkg/document"
)

// Store persists scene documents.
type Store interface {
	// Save inserts or replaces the document with d.ID. An empty ID is
	// assigned before writing.
	Save(ctx context.Context, d *document.Document) error
	Load(ctx context.Context, id string) (*document.Document, error)
	// List returns summaries, most recently modified first.
	List(ctx context.Context) ([]Summary, error)
	Delete(ctx context.Context, id string) error
	Close(ctx context.Context) error
}

// Summary describes a stored document without its content.
type Summary struct {
	ID       string    `json:"id" bson:"_id"`
	Title    string    `json:"title,omitempty" bson:"title,omitempty"`
	Modified time.Time `json:"modified" bson:"modified"`
	Nodes    int       `json:"nodes" bson:"node_count"`
}

func summarize(d *document.Document) Summary {
	return Summary{ID: d.ID, Title: d.Title, Modified: d.Modified, Nodes: len(d.Nodes)}
}
