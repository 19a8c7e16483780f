package models

import (
	"strings"
	"time"
)

type UserRole string

const (
	UserRoleAdministrator      UserRole = "Administrator"
	UserRoleProjectResponsible UserRole = "ProjectResponsible"
	UserRoleProjectTeamMember  UserRole = "ProjectTeamMember"
	UserRoleObserver           UserRole = "Observer"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdministrator, UserRoleProjectResponsible, UserRoleProjectTeamMember, UserRoleObserver:
		return true
	default:
		return false
	}
}

// CanEdit reports whether the role may create and update records.
func (r UserRole) CanEdit() bool {
	return r == UserRoleAdministrator || r == UserRoleProjectResponsible || r == UserRoleProjectTeamMember
}

func (r UserRole) CanDelete() bool {
	return r == UserRoleAdministrator || r == UserRoleProjectResponsible
}

func (r UserRole) CanManageUsers() bool {
	return r == UserRoleAdministrator
}

type User struct {
	// ID is the identity provider's subject for the user.
	ID          string     `json:"id" gorm:"type:varchar(255);primaryKey"`
	FullName    string     `json:"fullName" gorm:"type:varchar(255);not null;default:''"`
	Email       string     `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Role        UserRole   `json:"role" gorm:"type:varchar(30);not null;default:'Observer'"`
	Description string     `json:"description" gorm:"type:text;not null;default:''"`
	IsLocked    bool       `json:"isLocked" gorm:"not null;default:false"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	AddedByID   *string    `json:"addedBy" gorm:"column:added_by_id;type:varchar(255);index"`
	AddedBy     *User      `json:"-" gorm:"foreignKey:AddedByID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	LastLogin   *time.Time `json:"lastLogin"`
}

func (User) TableName() string {
	return "users"
}

func (u User) SearchFields() []string {
	return []string{u.FullName, u.Email, string(u.Role)}
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailDomain returns the part after the last "@", or "" when there is none.
func EmailDomain(email string) string {
	email = NormalizeEmail(email)
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return email[at+1:]
}
