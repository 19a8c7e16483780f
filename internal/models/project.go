package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Project struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string     `json:"name" gorm:"type:varchar(255);not null;index"`
	FrGoal    *float64   `json:"frGoal"`
	CreatedAt *time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt *time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (Project) TableName() string {
	return "projects"
}

func (p *Project) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p Project) SearchFields() []string {
	return []string{p.Name}
}
