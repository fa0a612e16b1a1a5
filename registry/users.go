package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sohbet-lite/core"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MaxNameLength is counted in characters.
const MaxNameLength = 20

// forbiddenNameChars may not appear anywhere in a user name.
const forbiddenNameChars = " <>'\"\n\r\t/\\?"

var (
	validate = validator.New()
	nameRule = fmt.Sprintf("required,max=%d,excludesall=%s", MaxNameLength, forbiddenNameChars)
)

// Users is the User Registry.
type Users struct {
	store core.UserStore
	now   func() time.Time
}

func NewUsers(store core.UserStore) *Users {
	return &Users{store: store, now: time.Now}
}

// ValidateName trims name and checks its shape.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := validate.Var(name, nameRule); err != nil {
		return "", fmt.Errorf("%w: name must be 1-%d characters without spaces, quotes, slashes or '?'", core.ErrInvalidInput, MaxNameLength)
	}
	return name, nil
}

// Register creates a user with a fresh unguessable token. A taken name fails with
// core.ErrConflict.
func (u *Users) Register(ctx context.Context, name string) (*core.User, error) {
	name, err := ValidateName(name)
	if err != nil {
		return nil, err
	}

	user := &core.User{
		Name:      name,
		Token:     newToken(),
		CreatedAt: u.now().UTC(),
	}
	if err := u.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, core.ErrConflict) {
			return nil, fmt.Errorf("%w: name %q is already taken", core.ErrConflict, name)
		}
		return nil, err
	}

	logrus.WithField("user", name).Info("User registered")
	return user, nil
}

// Lookup re-identifies a returning caller. The name is not re-validated, users
// created under older rules must keep working. Returns core.ErrNotFound for an
// empty or unknown token.
func (u *Users) Lookup(ctx context.Context, token string) (*core.User, error) {
	if token == "" {
		return nil, core.ErrNotFound
	}
	return u.store.FindUserByToken(ctx, token)
}

// newToken returns 128 bits as 32 hex characters.
func newToken() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")
}
