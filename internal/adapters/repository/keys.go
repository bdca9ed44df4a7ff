package repository

import (
	"fmt"

	"github.com/okian/scoutbook/internal/domain/identity"
	"github.com/okian/scoutbook/internal/domain/model"
)

// uniqueKeys returns the values the unique indexes are built on. Players
// without a birth year carry no identity key, and players without a
// recognisable profile link carry no external id; both stay NULL.
func uniqueKeys(p model.Player) (identityKey, externalID *string, err error) {
	key, err := identity.Key(p)
	if err != nil {
		return nil, nil, fmt.Errorf("identity key: %w", err)
	}
	if p.HasBirthYear() {
		identityKey = &key
	}
	if id, ok := identity.ExternalID(p.ExternalRef); ok {
		externalID = &id
	}
	return identityKey, externalID, nil
}
