package application

import (
	"context"
	"fmt"
	"sort"

	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
)

type Mutator struct {
	run    runner
	reader *Reader
	logger ports.Logger
}

// Create deploys the declared package. The platform refuses a deploy
// without an artifact and a runtime, so both are checked up front
// instead of round-tripping a doomed command.
func (m *Mutator) Create(ctx context.Context, payload domain.AttributeSet) (domain.AttributeSet, error) {
	name, _ := payload.GetString(domain.KeyName)

	file, ok := payload.GetString(domain.AppFileKey)
	if !ok || file == "" {
		return nil, errors.NewUserFacing(errors.CodeSpecValidation,
			fmt.Sprintf("application '%s' cannot be deployed without a package file", name),
			"Declare file in the application's spec block.")
	}
	if runtime, ok := payload.GetString(domain.AppRuntimeKey); !ok || runtime == "" {
		return nil, errors.NewUserFacing(errors.CodeSpecValidation,
			fmt.Sprintf("application '%s' cannot be deployed without a runtime", name),
			"Declare runtime in the application's spec block.")
	}

	args := append([]string{"runtime-mgr", "cloudhub-application", "deploy", name, file},
		modifyFlags(payload)...)
	if _, err := m.run.Run(ctx, args...); err != nil {
		return nil, err
	}
	m.logger.Infof(ctx, "Deployed CloudHub application '%s' from %s", name, file)
	return m.describe(ctx, name)
}

// modifyFlags turns the managed payload fields into CLI flags. Only
// fields the manifest declares are sent, so unmanaged settings keep
// their remote values.
func modifyFlags(payload domain.AttributeSet) []string {
	var flags []string
	addString := func(flag, key string) {
		if v, ok := payload.GetString(key); ok {
			flags = append(flags, flag, v)
		}
	}
	addBool := func(flag, key string) {
		if v, ok := payload.GetBool(key); ok {
			flags = append(flags, flag, fmt.Sprintf("%t", v))
		}
	}

	addString("--runtime", domain.AppRuntimeKey)
	addString("--region", domain.KeyRegion)
	if payload.Has(domain.AppWorkersKey) && !payload.IsNull(domain.AppWorkersKey) {
		flags = append(flags, "--workers", fmt.Sprintf("%v", payload[domain.AppWorkersKey]))
	}
	if payload.Has(domain.AppWorkerSizeKey) && !payload.IsNull(domain.AppWorkerSizeKey) {
		flags = append(flags, "--workerSize", fmt.Sprintf("%v", payload[domain.AppWorkerSizeKey]))
	}
	addBool("--persistentQueues", domain.AppPersistentQueuesKey)
	addBool("--persistentQueuesEncrypted", domain.AppPQEncryptedKey)
	addBool("--staticIPsEnabled", domain.AppStaticIPsEnabledKey)
	addBool("--objectStoreV1", domain.AppObjectStoreV1Key)
	addBool("--autoRestart", domain.AppAutoRestartKey)

	if props, ok := payload[domain.AppPropertiesKey].(map[string]any); ok {
		names := make([]string, 0, len(props))
		for name := range props {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			flags = append(flags, "--property", fmt.Sprintf("%s=%v", name, props[name]))
		}
	}
	return flags
}

func (m *Mutator) Update(ctx context.Context, id string, payload domain.AttributeSet) (domain.AttributeSet, error) {
	args := append([]string{"runtime-mgr", "cloudhub-application", "modify", id}, modifyFlags(payload)...)
	if _, err := m.run.Run(ctx, args...); err != nil {
		return nil, err
	}
	m.logger.Infof(ctx, "Modified CloudHub application '%s'", id)
	return m.describe(ctx, id)
}

func (m *Mutator) Transition(ctx context.Context, id string, target domain.LifecycleState) (domain.AttributeSet, error) {
	var verb string
	switch target {
	case domain.StateStarted:
		verb = "start"
	case domain.StateUndeployed:
		verb = "stop"
	default:
		return nil, errors.Newf(errors.CodeUnsupportedTransition,
			"CloudHub applications cannot transition to '%s'", target)
	}

	if _, err := m.run.Run(ctx, "runtime-mgr", "cloudhub-application", verb, id); err != nil {
		return nil, err
	}
	m.logger.Infof(ctx, "CloudHub application '%s': %s requested", id, verb)
	return m.describe(ctx, id)
}

func (m *Mutator) Delete(ctx context.Context, id string) error {
	if _, err := m.run.Run(ctx, "runtime-mgr", "cloudhub-application", "delete", id); err != nil {
		return err
	}
	m.logger.Infof(ctx, "Deleted CloudHub application '%s'", id)
	return nil
}

func (m *Mutator) describe(ctx context.Context, id string) (domain.AttributeSet, error) {
	attrs, found, err := m.reader.Find(ctx, domain.LookupKey{Name: id})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Newf(errors.CodeTransport,
			"CloudHub application '%s' disappeared between mutation and re-read", id)
	}
	return attrs, nil
}
