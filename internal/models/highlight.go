// Package models defines the records persisted by the archivist tables.
package models

import "time"

// Highlight is one anonymized, scored message. Every analyzed message of a
// consenting author produces one row whether or not it qualified as a
// highlight.
type Highlight struct {
	ID int64 `db:"id" json:"id"`
	// HashedAuthorID is the salted hash of the author, never the raw id.
	HashedAuthorID string `db:"hashed_author_id" json:"hashed_author_id"`
	// ChannelType is a category label such as "text" or "thread", not a
	// channel identity.
	ChannelType       string    `db:"channel_type" json:"channel_type"`
	AnonymizedContent string    `db:"anonymized_content" json:"anonymized_content"`
	SentimentScore    float64   `db:"sentiment_score" json:"sentiment_score"`
	ReactionCount     int       `db:"reaction_count" json:"reaction_count"`
	IsHighlight       bool      `db:"is_highlight" json:"is_highlight"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}
