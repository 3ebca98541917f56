package models

import (
	"time"

	"gorm.io/datatypes"
)

// Setting is a generic key/value entry; values are stored as JSON.
type Setting struct {
	Key       string         `gorm:"primaryKey" json:"key"`
	Value     datatypes.JSON `gorm:"type:json" json:"value"`
	UpdatedAt time.Time      `json:"updated_at"`
}
