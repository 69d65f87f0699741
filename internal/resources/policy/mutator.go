package policy

import (
	"context"

	jsoniter "github.com/json-iterator/go"

	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
)

type Mutator struct {
	run    runner
	reader *Reader
	logger ports.Logger
	json   jsoniter.API
}

func newMutator(run runner, reader *Reader, logger ports.Logger) *Mutator {
	return &Mutator{
		run:    run,
		reader: reader,
		logger: logger,
		json:   jsoniter.ConfigCompatibleWithStandardLibrary,
	}
}

func (m *Mutator) jsonFlag(payload domain.AttributeSet, key string) (string, bool, error) {
	if !payload.Has(key) || payload.IsNull(key) {
		return "", false, nil
	}
	encoded, err := m.json.MarshalToString(payload[key])
	if err != nil {
		return "", false, errors.Wrapf(err, errors.CodeInternal, "encoding policy %s", key)
	}
	return encoded, true, nil
}

func (m *Mutator) Create(ctx context.Context, payload domain.AttributeSet) (domain.AttributeSet, error) {
	apiID, _ := payload.GetString(domain.PolicyAPIInstanceKey)
	assetID, _ := payload.GetString(domain.PolicyAssetIDKey)
	version, _ := payload.GetString(domain.PolicyVersionKey)
	groupID, _ := payload.GetString(domain.PolicyGroupIDKey)

	args := []string{"api-mgr", "policy", "apply", apiID, assetID,
		"--policyVersion", version, "--groupId", groupID}
	config, ok, err := m.jsonFlag(payload, domain.PolicyConfigKey)
	if err != nil {
		return nil, err
	}
	if ok {
		args = append(args, "--config", config)
	}
	pointcut, ok, err := m.jsonFlag(payload, domain.PolicyPointcutKey)
	if err != nil {
		return nil, err
	}
	if ok {
		args = append(args, "--pointcut", pointcut)
	}

	if _, err := m.run.Run(ctx, args...); err != nil {
		return nil, err
	}
	m.logger.Infof(ctx, "Applied policy '%s' %s to API instance %s", assetID, version, apiID)

	return m.refetch(ctx, apiID, assetID)
}

func (m *Mutator) Update(ctx context.Context, id string, payload domain.AttributeSet) (domain.AttributeSet, error) {
	apiID, policyID, err := splitCompositeID(id)
	if err != nil {
		return nil, err
	}

	args := []string{"api-mgr", "policy", "edit", apiID, policyID}
	config, ok, err := m.jsonFlag(payload, domain.PolicyConfigKey)
	if err != nil {
		return nil, err
	}
	if ok {
		args = append(args, "--config", config)
	}
	pointcut, ok, err := m.jsonFlag(payload, domain.PolicyPointcutKey)
	if err != nil {
		return nil, err
	}
	if ok {
		args = append(args, "--pointcut", pointcut)
	}

	if _, err := m.run.Run(ctx, args...); err != nil {
		return nil, err
	}
	return m.refetchByID(ctx, id)
}

func (m *Mutator) Transition(ctx context.Context, id string, target domain.LifecycleState) (domain.AttributeSet, error) {
	apiID, policyID, err := splitCompositeID(id)
	if err != nil {
		return nil, err
	}

	var verb string
	switch target {
	case domain.StatePresent, domain.StateEnabled:
		verb = "enable"
	case domain.StateDisabled:
		verb = "disable"
	default:
		return nil, errors.Newf(errors.CodeUnsupportedTransition,
			"policies cannot transition to '%s'", target)
	}

	if _, err := m.run.Run(ctx, "api-mgr", "policy", verb, apiID, policyID); err != nil {
		return nil, err
	}
	m.logger.Infof(ctx, "Policy %s on API instance %s: %sd", policyID, apiID, verb)
	return m.refetchByID(ctx, id)
}

func (m *Mutator) Delete(ctx context.Context, id string) error {
	apiID, policyID, err := splitCompositeID(id)
	if err != nil {
		return err
	}
	if _, err := m.run.Run(ctx, "api-mgr", "policy", "remove", apiID, policyID); err != nil {
		return err
	}
	m.logger.Infof(ctx, "Removed policy %s from API instance %s", policyID, apiID)
	return nil
}

func (m *Mutator) refetch(ctx context.Context, apiID, assetID string) (domain.AttributeSet, error) {
	key := domain.LookupKey{Qualifiers: map[string]string{
		domain.PolicyAPIInstanceKey: apiID,
		domain.PolicyAssetIDKey:     assetID,
	}}
	attrs, found, err := m.reader.Find(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Newf(errors.CodeTransport,
			"policy '%s' was applied to API instance %s but is not listed", assetID, apiID)
	}
	return attrs, nil
}

func (m *Mutator) refetchByID(ctx context.Context, id string) (domain.AttributeSet, error) {
	attrs, found, err := m.reader.Find(ctx, domain.LookupKey{ID: id})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Newf(errors.CodeTransport,
			"policy %s disappeared between mutation and re-read", id)
	}
	return attrs, nil
}
