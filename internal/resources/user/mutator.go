package user

import (
	"context"
	"fmt"

	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/rest"
	"github.com/olusolaa/anypoint-reconciler/internal/anypoint"
	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
)

type Mutator struct {
	client  *rest.Client
	session anypoint.Session
	logger  ports.Logger
}

func (m *Mutator) usersPath() string {
	return fmt.Sprintf("/accounts/api/organizations/%s/users", m.session.OrganizationID)
}

func (m *Mutator) Create(ctx context.Context, payload domain.AttributeSet) (domain.AttributeSet, error) {
	body := map[string]any{}
	putManaged(body, "username", payload, domain.UserUsernameKey)
	putManaged(body, "firstName", payload, domain.UserFirstNameKey)
	putManaged(body, "lastName", payload, domain.UserLastNameKey)
	putManaged(body, "email", payload, domain.UserEmailKey)
	putManaged(body, "password", payload, domain.UserPasswordKey)

	var created userRecord
	if err := m.client.Post(ctx, m.usersPath(), body, &created); err != nil {
		return nil, err
	}
	m.logger.Infof(ctx, "Created user '%s' (id %s)", created.Username, created.ID)
	return userAttributes(created), nil
}

func (m *Mutator) Update(ctx context.Context, id string, payload domain.AttributeSet) (domain.AttributeSet, error) {
	body := map[string]any{}
	putManaged(body, "firstName", payload, domain.UserFirstNameKey)
	putManaged(body, "lastName", payload, domain.UserLastNameKey)
	putManaged(body, "email", payload, domain.UserEmailKey)

	var updated userRecord
	path := fmt.Sprintf("%s/%s", m.usersPath(), id)
	if err := m.client.Put(ctx, path, body, &updated); err != nil {
		return nil, err
	}
	return userAttributes(updated), nil
}

// Transition flips the enabled flag through the bulk user endpoint,
// which is the only surface the platform exposes for it.
func (m *Mutator) Transition(ctx context.Context, id string, target domain.LifecycleState) (domain.AttributeSet, error) {
	var enabled bool
	switch target {
	case domain.StatePresent:
		enabled = true
	case domain.StateDisabled:
		enabled = false
	default:
		return nil, errors.Newf(errors.CodeUnsupportedTransition, "users cannot transition to '%s'", target)
	}

	body := []map[string]any{{"id": id, "enabled": enabled}}
	if err := m.client.Put(ctx, m.usersPath(), body, nil); err != nil {
		return nil, err
	}

	var u userRecord
	path := fmt.Sprintf("%s/%s", m.usersPath(), id)
	if err := m.client.Get(ctx, path, nil, &u); err != nil {
		return nil, err
	}
	return userAttributes(u), nil
}

func (m *Mutator) Delete(ctx context.Context, id string) error {
	path := fmt.Sprintf("%s/%s", m.usersPath(), id)
	if err := m.client.Delete(ctx, path); err != nil {
		return err
	}
	m.logger.Infof(ctx, "Deleted user id %s", id)
	return nil
}

func putManaged(body map[string]any, field string, payload domain.AttributeSet, key string) {
	if payload.Has(key) {
		body[field] = payload[key]
	}
}
