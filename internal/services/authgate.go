package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/collabtrack/server/internal/models"
	"github.com/collabtrack/server/internal/preferences"
	"github.com/collabtrack/server/pkg/logger"
	"gorm.io/gorm"
)

// ExternalIdentity is what the identity provider tells us about a login.
type ExternalIdentity struct {
	ID    string
	Email string
	Name  string
}

type DenyReason string

const (
	ReasonNone         DenyReason = ""
	ReasonMissingEmail DenyReason = "missing_email"
	ReasonNotAllowed   DenyReason = "not_allowed"
	ReasonLocked       DenyReason = "locked"
	ReasonFailed       DenyReason = "failed"
)

const (
	messageMissingEmail = "Your identity provider did not share an email address."
	messageLocked       = "Your account has been locked. Please contact an administrator."
	messageFailed       = "Sign-in failed. Please try again later."
)

type Decision struct {
	Authorized  bool
	User        *models.User
	Message     string
	Reason      DenyReason
	Provisioned bool
}

// AuthGate decides whether an authenticated identity may use the
// application and reconciles the matching user record.
type AuthGate struct {
	DB             *gorm.DB
	AllowedDomains []string
	// OnReassign runs after a committed id change, for owner-keyed data
	// that lives outside the database.
	OnReassign func(ctx context.Context, from, to string) error
	now        func() time.Time
}

func NewAuthGate(db *gorm.DB, allowedDomains []string) *AuthGate {
	return &AuthGate{DB: db, AllowedDomains: allowedDomains, now: time.Now}
}

func (g *AuthGate) timeNow() time.Time {
	if g.now == nil {
		return time.Now()
	}
	return g.now()
}

func (g *AuthGate) domainAllowed(email string) bool {
	domain := models.EmailDomain(email)
	if domain == "" {
		return false
	}
	for _, allowed := range g.AllowedDomains {
		if strings.EqualFold(domain, allowed) {
			return true
		}
	}
	return false
}

// Authorize runs the gate for identity. The returned error is set only when
// the transaction failed, in which case the decision is a generic denial.
func (g *AuthGate) Authorize(ctx context.Context, identity ExternalIdentity) (Decision, error) {
	email := models.NormalizeEmail(identity.Email)
	if email == "" {
		logger.Warn("login_denied", map[string]interface{}{
			"reason":      string(ReasonMissingEmail),
			"identity_id": identity.ID,
		})
		return Decision{Message: messageMissingEmail, Reason: ReasonMissingEmail}, nil
	}
	if identity.ID == "" {
		return Decision{Message: messageFailed, Reason: ReasonFailed}, errors.New("identity has no subject")
	}

	var decision Decision
	var reassignedFrom string

	err := g.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.Where("email = ?", email).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return g.provision(tx, identity, email, &decision)
		}
		if err != nil {
			return fmt.Errorf("lookup user: %w", err)
		}

		if user.IsLocked {
			decision = Decision{User: &user, Message: messageLocked, Reason: ReasonLocked}
			return nil
		}

		if user.ID != identity.ID {
			if err := reassignUserID(tx, user.ID, identity.ID); err != nil {
				return err
			}
			reassignedFrom = user.ID
		}

		now := g.timeNow().UTC()
		if err := tx.Model(&models.User{}).Where("id = ?", identity.ID).Update("last_login", now).Error; err != nil {
			return fmt.Errorf("stamp last login: %w", err)
		}
		var current models.User
		if err := tx.First(&current, "id = ?", identity.ID).Error; err != nil {
			return fmt.Errorf("reload user: %w", err)
		}

		decision = Decision{Authorized: true, User: &current}
		return nil
	})
	if err != nil {
		logger.Error("login_transaction_failed", err, map[string]interface{}{
			"email":       email,
			"identity_id": identity.ID,
		})
		return Decision{Message: messageFailed, Reason: ReasonFailed}, err
	}

	if reassignedFrom != "" {
		logger.InfoWithUser(identity.ID, "user_id_reassigned", map[string]interface{}{
			"previous_id": reassignedFrom,
		})
		if g.OnReassign != nil {
			if err := g.OnReassign(ctx, reassignedFrom, identity.ID); err != nil {
				logger.ErrorWithUser(identity.ID, "user_id_reassign_hook_failed", err, map[string]interface{}{
					"previous_id": reassignedFrom,
				})
			}
		}
	}

	switch {
	case decision.Authorized:
		logger.InfoWithUser(decision.User.ID, "login_authorized", map[string]interface{}{
			"provisioned": decision.Provisioned,
			"role":        string(decision.User.Role),
		})
	case decision.Reason == ReasonLocked:
		logger.WarnWithUser(decision.User.ID, "login_denied", map[string]interface{}{
			"reason": string(decision.Reason),
		})
	default:
		logger.Warn("login_denied", map[string]interface{}{
			"reason": string(decision.Reason),
			"email":  email,
		})
	}

	return decision, nil
}

func (g *AuthGate) provision(tx *gorm.DB, identity ExternalIdentity, email string, decision *Decision) error {
	var count int64
	if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}

	var role models.UserRole
	switch {
	case count == 0:
		role = models.UserRoleAdministrator
	case g.domainAllowed(email):
		role = models.UserRoleObserver
	default:
		*decision = Decision{
			Message: fmt.Sprintf("The account %s is not authorized to use this application.", email),
			Reason:  ReasonNotAllowed,
		}
		return nil
	}

	now := g.timeNow().UTC()
	user := models.User{
		ID:        identity.ID,
		FullName:  strings.TrimSpace(identity.Name),
		Email:     email,
		Role:      role,
		LastLogin: &now,
	}
	if err := tx.Create(&user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	logger.InfoWithUser(user.ID, "user_provisioned", map[string]interface{}{
		"email":     user.Email,
		"role":      string(user.Role),
		"bootstrap": count == 0,
	})

	*decision = Decision{Authorized: true, User: &user, Provisioned: true}
	return nil
}

// reassignUserID moves a user to a new primary key along with every column
// that refers to the old one.
func reassignUserID(tx *gorm.DB, from, to string) error {
	if err := tx.Model(&models.User{}).Where("id = ?", from).Update("id", to).Error; err != nil {
		return fmt.Errorf("reassign user id: %w", err)
	}
	if err := tx.Model(&models.User{}).Where("added_by_id = ?", from).Update("added_by_id", to).Error; err != nil {
		return fmt.Errorf("reassign added_by references: %w", err)
	}
	return preferences.RenameOwner(tx, from, to)
}
