package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID reference
}

// Versioned is embedded by every mutable ledger entity. The version is read
// together with the entity and must match at write time; a mismatch surfaces
// as apperrors.ErrConflict and the caller re-reads and retries.
type Versioned struct {
	Version int64 `json:"version"`
}
