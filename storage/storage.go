package storage

import (
	"context"
	"fmt"

	"github.com/octabyte/caisse-gommon/models"
	"github.com/octabyte/caisse-gommon/utils"
)

// Keys of the persisted pair.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// Credentials is the persisted (token, user) pair.
type Credentials struct {
	Token string
	User  models.User
}

// CredentialStore persists the pair durably. Implementations write and clear
// both halves together; Load returns nil, nil when nothing (or only one half)
// is stored.
type CredentialStore interface {
	Load(ctx context.Context) (*Credentials, error)
	Save(ctx context.Context, creds Credentials) error
	Clear(ctx context.Context) error
}

// encode turns the pair into the two string values that get stored.
func encode(creds Credentials) (map[string]string, error) {
	if creds.Token == "" {
		return nil, fmt.Errorf("refusing to store credentials without a token")
	}

	user, err := utils.StructToBytes(creds.User)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user: %w", err)
	}

	return map[string]string{
		TokenKey: creds.Token,
		UserKey:  string(user),
	}, nil
}

func decode(token, user string) (*Credentials, error) {
	if token == "" || user == "" {
		return nil, nil
	}

	creds := &Credentials{Token: token}
	if err := utils.BytesToStruct([]byte(user), &creds.User); err != nil {
		return nil, fmt.Errorf("failed to decode stored user: %w", err)
	}

	return creds, nil
}
