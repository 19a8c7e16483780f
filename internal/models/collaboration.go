package models

import "github.com/google/uuid"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type CollaborationType string

const (
	CollaborationTypeFinancial   CollaborationType = "financial"
	CollaborationTypeMaterial    CollaborationType = "material"
	CollaborationTypeEducational CollaborationType = "educational"
)

func (t CollaborationType) Valid() bool {
	return t == CollaborationTypeFinancial || t == CollaborationTypeMaterial || t == CollaborationTypeEducational
}

const (
	StatusSuccessful   = "Successful"
	StatusFailed       = "Failed"
	StatusContacted    = "Contacted"
	StatusNotContacted = "Not contacted"
)

type Collaboration struct {
	BaseModel
	CompanyID       uuid.UUID         `json:"companyId" gorm:"type:uuid;not null;index"`
	ProjectID       uuid.UUID         `json:"projectId" gorm:"type:uuid;not null;index"`
	PersonID        *uuid.UUID        `json:"personId" gorm:"type:uuid;index"`
	Responsible     string            `json:"responsible" gorm:"type:varchar(255);not null"`
	Comment         string            `json:"comment" gorm:"type:text;not null;default:''"`
	Contacted       bool              `json:"contacted" gorm:"not null;default:false"`
	Successful      *bool             `json:"successful"`
	Letter          bool              `json:"letter" gorm:"not null;default:false"`
	Meeting         *bool             `json:"meeting"`
	Priority        Priority          `json:"priority" gorm:"type:varchar(10);not null;default:'low'"`
	Amount          *float64          `json:"amount"`
	ContactInFuture *bool             `json:"contactInFuture"`
	Type            CollaborationType `json:"type" gorm:"type:varchar(20);not null;default:'financial'"`
	Company         *Company          `json:"company,omitempty" gorm:"foreignKey:CompanyID;references:ID"`
	Project         *Project          `json:"project,omitempty" gorm:"foreignKey:ProjectID;references:ID"`
	Person          *Person           `json:"person,omitempty" gorm:"foreignKey:PersonID;references:ID;constraint:OnDelete:SET NULL"`
}

func (Collaboration) TableName() string {
	return "collaborations"
}

// StatusText labels the collaboration. A recorded outcome wins over the
// contact state; meeting and letter are not reflected here even though
// StatusRank orders by them.
func (c *Collaboration) StatusText() string {
	if c.Successful != nil {
		if *c.Successful {
			return StatusSuccessful
		}
		return StatusFailed
	}
	if c.Contacted {
		return StatusContacted
	}
	return StatusNotContacted
}

func (c *Collaboration) StatusColor() string {
	switch c.StatusText() {
	case StatusSuccessful:
		return "green"
	case StatusFailed:
		return "red"
	case StatusContacted:
		return "blue"
	default:
		return "gray"
	}
}

// StatusRank orders collaborations by how far they progressed:
// successful > meeting > letter > contacted > nothing.
func (c *Collaboration) StatusRank() int {
	switch {
	case c.Successful != nil && *c.Successful:
		return 4
	case c.Meeting != nil && *c.Meeting:
		return 3
	case c.Letter:
		return 2
	case c.Contacted:
		return 1
	default:
		return 0
	}
}

func (c *Collaboration) SearchFields() []string {
	return []string{c.Responsible, c.Comment, string(c.Priority), string(c.Type), c.StatusText()}
}

// PriorityRank maps a priority to its sort weight; unknown values rank lowest.
func PriorityRank(p Priority) int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

func PriorityLabel(p Priority) string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	default:
		return "Unknown"
	}
}
