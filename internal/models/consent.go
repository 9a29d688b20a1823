package models

import "time"

// ConsentRecord is the stored opt-in decision of one hashed user. The
// absence of a record means the user was never asked.
type ConsentRecord struct {
	UserID  string `db:"user_id" json:"user_id"`
	Consent bool   `db:"consent" json:"consent"`
	// RetentionDays is stored per user but the sweeper applies the global
	// horizon.
	RetentionDays int       `db:"data_retention_days" json:"data_retention_days"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
