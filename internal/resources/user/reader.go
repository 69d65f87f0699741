package user

import (
	"context"
	"fmt"
	"net/url"

	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/rest"
	"github.com/olusolaa/anypoint-reconciler/internal/anypoint"
	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
)

const listPageSize = "500"

type userRecord struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Enabled   bool   `json:"enabled"`
}

type userListResponse struct {
	Data  []userRecord `json:"data"`
	Total int          `json:"total"`
}

func userAttributes(u userRecord) domain.AttributeSet {
	return domain.AttributeSet{
		domain.KeyID:            u.ID,
		domain.UserUsernameKey:  u.Username,
		domain.UserFirstNameKey: u.FirstName,
		domain.UserLastNameKey:  u.LastName,
		domain.UserEmailKey:     u.Email,
		domain.UserEnabledKey:   u.Enabled,
	}
}

type Reader struct {
	client  *rest.Client
	session anypoint.Session
}

func (r *Reader) Find(ctx context.Context, key domain.LookupKey) (domain.AttributeSet, bool, error) {
	parent := domain.LookupKey{ID: r.session.OrganizationID}
	return r.FindChild(ctx, parent, func(attrs domain.AttributeSet) bool {
		if key.ID != "" {
			id, _ := attrs.GetString(domain.KeyID)
			return id == key.ID
		}
		username, _ := attrs.GetString(domain.UserUsernameKey)
		return username == key.Name
	})
}

// FindChild lists the users of one business group and applies match.
// Two matches mean the natural key is not unique remotely, which is an
// ambiguity, not a pick-the-first.
func (r *Reader) FindChild(ctx context.Context, parent domain.LookupKey, match ports.ChildMatcher) (domain.AttributeSet, bool, error) {
	orgID := parent.ID
	if orgID == "" {
		orgID = r.session.OrganizationID
	}

	var resp userListResponse
	path := fmt.Sprintf("/accounts/api/organizations/%s/users", orgID)
	query := url.Values{"limit": {listPageSize}}
	if err := r.client.Get(ctx, path, query, &resp); err != nil {
		return nil, false, err
	}

	var found domain.AttributeSet
	for _, u := range resp.Data {
		attrs := userAttributes(u)
		if !match(attrs) {
			continue
		}
		if found != nil {
			return nil, false, errors.Newf(errors.CodeAmbiguousState,
				"more than one user in business group %s matches the lookup", orgID)
		}
		found = attrs
	}
	return found, found != nil, nil
}
