package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactDetails is the shape shared by contacts and people.
type ContactDetails struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Email     string    `json:"email" gorm:"type:varchar(255);not null;default:''"`
	Phone     string    `json:"phone" gorm:"type:varchar(50);not null;default:''"`
	CompanyID uuid.UUID `json:"companyId" gorm:"type:uuid;not null;index"`
	Function  string    `json:"function" gorm:"type:varchar(255);not null;default:''"`
	CreatedAt time.Time `json:"createdAt"`
}

func (d *ContactDetails) BeforeCreate(_ *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func (d ContactDetails) SearchFields() []string {
	return []string{d.Name, d.Email, d.Phone, d.Function}
}

type Contact struct {
	ContactDetails
	Company *Company `json:"company,omitempty" gorm:"foreignKey:CompanyID;references:ID"`
}

func (Contact) TableName() string {
	return "contacts"
}

type Person struct {
	ContactDetails
	Company *Company `json:"company,omitempty" gorm:"foreignKey:CompanyID;references:ID"`
}

func (Person) TableName() string {
	return "people"
}
