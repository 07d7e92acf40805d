package domain

import "time"

// Idempotency records the outcome of a previously processed token-creation
// request, keyed by (department_id, key). Patient kiosks retry freely on flaky
// networks; replaying the stored token id avoids issuing a duplicate token.
type Idempotency struct {
	ID           string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	DepartmentID string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_dept_key,priority:1"`
	Key          string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_dept_key,priority:2"`
	TokenID      string    `gorm:"type:TEXT NOT NULL"`
	Status       int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt    time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt    time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
