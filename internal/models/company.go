package models

import "gorm.io/gorm"

type BudgetingMonth string

const (
	BudgetingMonthNone      BudgetingMonth = ""
	BudgetingMonthJanuary   BudgetingMonth = "January"
	BudgetingMonthFebruary  BudgetingMonth = "February"
	BudgetingMonthMarch     BudgetingMonth = "March"
	BudgetingMonthApril     BudgetingMonth = "April"
	BudgetingMonthMay       BudgetingMonth = "May"
	BudgetingMonthJune      BudgetingMonth = "June"
	BudgetingMonthJuly      BudgetingMonth = "July"
	BudgetingMonthAugust    BudgetingMonth = "August"
	BudgetingMonthSeptember BudgetingMonth = "September"
	BudgetingMonthOctober   BudgetingMonth = "October"
	BudgetingMonthNovember  BudgetingMonth = "November"
	BudgetingMonthDecember  BudgetingMonth = "December"
)

var budgetingMonths = []BudgetingMonth{
	BudgetingMonthJanuary, BudgetingMonthFebruary, BudgetingMonthMarch,
	BudgetingMonthApril, BudgetingMonthMay, BudgetingMonthJune,
	BudgetingMonthJuly, BudgetingMonthAugust, BudgetingMonthSeptember,
	BudgetingMonthOctober, BudgetingMonthNovember, BudgetingMonthDecember,
}

// BudgetingMonths lists the accepted month names in calendar order.
func BudgetingMonths() []BudgetingMonth {
	out := make([]BudgetingMonth, len(budgetingMonths))
	copy(out, budgetingMonths)
	return out
}

func (m BudgetingMonth) Valid() bool {
	if m == BudgetingMonthNone {
		return true
	}
	for _, month := range budgetingMonths {
		if m == month {
			return true
		}
	}
	return false
}

type Company struct {
	BaseModel
	Name           string         `json:"name" gorm:"type:varchar(255);not null;index"`
	URL            string         `json:"url" gorm:"type:varchar(500);not null;default:''"`
	Address        string         `json:"address" gorm:"type:varchar(255);not null;default:''"`
	City           string         `json:"city" gorm:"type:varchar(120);not null;default:''"`
	Zip            string         `json:"zip" gorm:"type:varchar(20);not null;default:''"`
	Country        string         `json:"country" gorm:"type:varchar(120);not null;default:''"`
	Phone          string         `json:"phone" gorm:"type:varchar(50);not null;default:''"`
	BudgetingMonth BudgetingMonth `json:"budgetingMonth" gorm:"type:varchar(20);not null;default:''"`
	Comment        string         `json:"comment" gorm:"type:text;not null;default:''"`
}

func (Company) TableName() string {
	return "companies"
}

// AfterFind drops month values that are outside the fixed set.
func (c *Company) AfterFind(_ *gorm.DB) error {
	if !c.BudgetingMonth.Valid() {
		c.BudgetingMonth = BudgetingMonthNone
	}
	return nil
}

// SearchFields returns the values the list filter matches a query against.
func (c Company) SearchFields() []string {
	return []string{c.Name, c.City, c.Country, c.URL, c.Phone, c.Comment}
}
