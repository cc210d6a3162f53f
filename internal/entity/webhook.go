package entity

import (
	"crypto/subtle"
	"strings"
	"time"
)

// Webhook lets an external system start a deployment of a group or a
// fixed list of repo configs.
type Webhook struct {
	ID              ID         `json:"id"`
	UserID          string     `json:"userId"`
	Name            string     `json:"name"`
	GroupID         ID         `json:"groupId,omitempty"`
	RepoConfigIDs   []ID       `json:"repoConfigIds,omitempty"`
	Secret          string     `json:"secret,omitempty"`
	IsActive        bool       `json:"isActive"`
	LastTriggeredAt *time.Time `json:"lastTriggeredAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (w *Webhook) Validate() error {
	if strings.TrimSpace(w.UserID) == "" || strings.TrimSpace(w.Name) == "" {
		return ErrInvalid
	}
	if w.GroupID.IsZero() && len(w.RepoConfigIDs) == 0 {
		return ErrInvalid
	}
	return nil
}

func (w *Webhook) SecretMatches(secret string) bool {
	return subtle.ConstantTimeCompare([]byte(w.Secret), []byte(secret)) == 1
}

// Redacted returns a copy without the secret, for listings.
func (w Webhook) Redacted() *Webhook {
	w.Secret = ""
	return &w
}
