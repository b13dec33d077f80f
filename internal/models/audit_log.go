package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Audit actions and resources written by the services.
const (
	AuditActionCreate  = "CREATE"
	AuditActionUpdate  = "UPDATE"
	AuditActionDelete  = "DELETE"
	AuditActionApprove = "APPROVE"
	AuditActionReject  = "REJECT"

	AuditResourceTask = "Task"
	AuditResourceUser = "User"
)

// AuditLog is an append-only record of a mutation.
type AuditLog struct {
	ID         uint64    `gorm:"primarykey" json:"id"`
	UserID     uint64    `gorm:"not null;index" json:"user_id"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	Resource   string    `gorm:"type:varchar(100);not null;index" json:"resource"`
	ResourceID string    `gorm:"type:varchar(64);index" json:"resource_id"`
	OldValue   JSON      `gorm:"type:text" json:"old_value"`
	NewValue   JSON      `gorm:"type:text" json:"new_value"`
	IPAddress  string    `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent  string    `gorm:"type:text" json:"user_agent"`
	RequestID  string    `gorm:"type:varchar(64)" json:"request_id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// JSON stores a JSON document in a text column. An empty value is NULL.
type JSON []byte

// NewJSON marshals v, returning nil for a nil value.
func NewJSON(v any) (JSON, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return nil, nil
	}
	return JSON(data), nil
}

// Value implements driver.Valuer.
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

// Scan implements sql.Scanner.
func (j *JSON) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append(JSON(nil), v...)
	case string:
		*j = JSON(v)
	default:
		return fmt.Errorf("models: cannot scan %T into JSON", src)
	}
	return nil
}

// MarshalJSON emits the stored document, or null.
func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON stores the raw document.
func (j *JSON) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*j = nil
		return nil
	}
	*j = append(JSON(nil), data...)
	return nil
}
