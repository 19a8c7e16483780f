package models

import (
	"time"

	"gorm.io/datatypes"
)

// TablePreferenceRoot holds every table's preferences for one owner as a
// single JSON object keyed by table id.
type TablePreferenceRoot struct {
	OwnerID   string         `json:"ownerId" gorm:"type:varchar(255);primaryKey"`
	Data      datatypes.JSON `json:"data" gorm:"not null"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (TablePreferenceRoot) TableName() string {
	return "table_preference_roots"
}
