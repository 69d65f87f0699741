// Package anypoint resolves the account-level context a reconciliation
// runs in: which business group and which environment the declared
// resources belong to.
package anypoint

import (
	"context"
	"fmt"

	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/rest"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
)

// Session is the resolved platform context. It is built once at startup
// and read-only afterwards, so plugins can share it freely.
type Session struct {
	UserID           string
	Username         string
	OrganizationID   string
	OrganizationName string
	EnvironmentID    string
	EnvironmentName  string
}

type meResponse struct {
	User struct {
		ID           string `json:"id"`
		Username     string `json:"username"`
		Organization struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"organization"`
		MemberOfOrganizations []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"memberOfOrganizations"`
	} `json:"user"`
}

type environmentsResponse struct {
	Data []struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Type         string `json:"type"`
		IsProduction bool   `json:"isProduction"`
	} `json:"data"`
	Total int `json:"total"`
}

// Open resolves organization and environment names to ids. Either name
// also matches when it already is an id. An empty organization selects
// the token owner's home business group; an empty environment leaves
// the session without one, which only environment-scoped resource kinds
// complain about.
func Open(ctx context.Context, client *rest.Client, organization, environment string, logger ports.Logger) (Session, error) {
	var me meResponse
	if err := client.Get(ctx, "/accounts/api/me", nil, &me); err != nil {
		return Session{}, err
	}

	session := Session{
		UserID:   me.User.ID,
		Username: me.User.Username,
	}

	if organization == "" {
		session.OrganizationID = me.User.Organization.ID
		session.OrganizationName = me.User.Organization.Name
	} else {
		found := false
		for _, org := range me.User.MemberOfOrganizations {
			if org.Name == organization || org.ID == organization {
				session.OrganizationID = org.ID
				session.OrganizationName = org.Name
				found = true
				break
			}
		}
		if !found {
			return Session{}, errors.NewUserFacing(errors.CodeDependencyNotFound,
				fmt.Sprintf("Business Group '%s' not found", organization),
				"Check anypoint.organization; the token owner must be a member of that business group.")
		}
	}
	logger.Debugf(ctx, "Resolved business group '%s' to id %s", session.OrganizationName, session.OrganizationID)

	if environment == "" {
		return session, nil
	}

	var envs environmentsResponse
	path := fmt.Sprintf("/accounts/api/organizations/%s/environments", session.OrganizationID)
	if err := client.Get(ctx, path, nil, &envs); err != nil {
		return Session{}, err
	}
	for _, env := range envs.Data {
		if env.Name == environment || env.ID == environment {
			session.EnvironmentID = env.ID
			session.EnvironmentName = env.Name
			logger.Debugf(ctx, "Resolved environment '%s' to id %s", env.Name, env.ID)
			return session, nil
		}
	}
	return Session{}, errors.NewUserFacing(errors.CodeDependencyNotFound,
		fmt.Sprintf("Environment '%s' not found in business group '%s'", environment, session.OrganizationName),
		"Check anypoint.environment against the environments of the configured business group.")
}

// RequireEnvironment returns the environment id, or a user-facing error
// for resource kinds that only exist inside an environment.
func (s Session) RequireEnvironment() (string, error) {
	if s.EnvironmentID == "" {
		return "", errors.NewUserFacing(errors.CodeConfigValidation,
			"this resource kind needs an environment, but anypoint.environment is not set",
			"Set anypoint.environment (or ANYPOINT_ENVIRONMENT) to the target environment name.")
	}
	return s.EnvironmentID, nil
}
