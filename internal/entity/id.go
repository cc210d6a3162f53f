package entity

import (
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type ID string

func NewID() ID { return ID(uuid.NewString()) }

// ParseID validates s as a UUID.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", ErrInvalid
	}
	return ID(u.String()), nil
}

func (id ID) String() string { return string(id) }
func (id ID) IsZero() bool   { return id == "" }

// Strings converts ids to plain strings.
func Strings(ids []ID) []string {
	return lo.Map(ids, func(id ID, _ int) string { return id.String() })
}
