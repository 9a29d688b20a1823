// Package backup exports the highlight archive as a JSON document and
// hands it to a sink: a local directory or an S3 compatible bucket.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/archivist/internal/models"
)

// Version of the Document layout.
const Version = 1

// Document is the bulk export of the archive. It is written for humans and
// external tools and is never read back.
type Document struct {
	Highlights []models.Highlight `json:"highlights"`
	Timestamp  time.Time          `json:"timestamp"`
	Version    int                `json:"version"`
}

func NewDocument(highlights []models.Highlight, now time.Time) Document {
	if highlights == nil {
		highlights = []models.Highlight{}
	}
	return Document{Highlights: highlights, Timestamp: now.UTC(), Version: Version}
}

// Encode renders doc as indented JSON.
func Encode(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return data, nil
}

// FileName is the name a backup taken at ts is stored under.
func FileName(ts time.Time) string {
	return fmt.Sprintf("archivist_backup_%d.json", ts.UnixMilli())
}

// Sink stores an encoded Document and returns where it went.
type Sink interface {
	Name() string
	Store(ctx context.Context, doc Document, data []byte) (string, error)
}
