package models

import "time"

type UserPoints struct {
	UserID            string    `db:"user_id" json:"user_id"`
	Points            int64     `db:"points" json:"points"`
	HighlightsCreated int64     `db:"highlights_created" json:"highlights_created"`
	VotesCast         int64     `db:"votes_cast" json:"votes_cast"`
	LastUpdated       time.Time `db:"last_updated" json:"last_updated"`
}
