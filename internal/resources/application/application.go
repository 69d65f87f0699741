// Package application reconciles CloudHub applications: the initial
// deploy from a declared package file, runtime settings, and the
// start/stop lifecycle. The artifact itself is deploy-time input, not
// a compared attribute, so a changed package never shows up as drift.
package application

import (
	"context"
	"fmt"

	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/cli"
	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
	"github.com/olusolaa/anypoint-reconciler/internal/resources/spec"
)

type runner interface {
	Run(ctx context.Context, args ...string) (cli.Result, error)
	RunJSON(ctx context.Context, out any, args ...string) (cli.Result, error)
}

type Spec struct {
	File                      string         `mapstructure:"file"`
	Runtime                   string         `mapstructure:"runtime"`
	Workers                   int            `mapstructure:"workers" validate:"omitempty,gte=1"`
	WorkerSize                float64        `mapstructure:"worker_size" validate:"gte=0"`
	Region                    string         `mapstructure:"region"`
	PersistentQueues          bool           `mapstructure:"persistent_queues"`
	PersistentQueuesEncrypted bool           `mapstructure:"persistent_queues_encrypted"`
	StaticIPsEnabled          bool           `mapstructure:"static_ips_enabled"`
	ObjectStoreV1             bool           `mapstructure:"object_store_v1"`
	AutoRestart               bool           `mapstructure:"auto_restart"`
	Properties                map[string]any `mapstructure:"properties"`
}

var diffPolicy = domain.DiffPolicy{
	Rules: map[string]domain.ComparisonRule{
		domain.KeyName:                domain.RuleExact,
		domain.KeyRegion:              domain.RuleExact,
		domain.AppRuntimeKey:          domain.RuleExact,
		domain.AppWorkersKey:          domain.RuleExact,
		domain.AppWorkerSizeKey:       domain.RuleExact,
		domain.AppPersistentQueuesKey: domain.RuleExact,
		domain.AppPQEncryptedKey:      domain.RuleExact,
		domain.AppStaticIPsEnabledKey: domain.RuleExact,
		domain.AppObjectStoreV1Key:    domain.RuleExact,
		domain.AppAutoRestartKey:      domain.RuleExact,
		domain.AppPropertiesKey:       domain.RuleExact,
	},
}

type record struct {
	attrs domain.AttributeSet
}

func (r record) Kind() domain.ResourceKind { return domain.KindCloudHubApplication }

func (r record) LookupKey() domain.LookupKey {
	name, _ := r.attrs.GetString(domain.KeyName)
	return domain.LookupKey{Name: name}
}

func (r record) ToAttributeSet() domain.AttributeSet { return r.attrs.Clone() }

func (r record) DiffPolicy() domain.DiffPolicy { return diffPolicy }

type Plugin struct {
	reader  *Reader
	mutator *Mutator
}

var _ ports.ResourcePlugin = (*Plugin)(nil)

func New(run runner, logger ports.Logger) *Plugin {
	reader := &Reader{run: run}
	return &Plugin{
		reader:  reader,
		mutator: &Mutator{run: run, reader: reader, logger: logger},
	}
}

func (p *Plugin) Kind() domain.ResourceKind { return domain.KindCloudHubApplication }

func (p *Plugin) States() []domain.LifecycleState {
	return []domain.LifecycleState{
		domain.StatePresent, domain.StateStarted, domain.StateUndeployed, domain.StateAbsent,
	}
}

// Behavior: present means deployed and is indifferent to whether the
// application runs, so either run state satisfies it. Start and stop
// act on an existing deployment; a missing application is deployed
// only when the declared state is present.
func (p *Plugin) Behavior() domain.Behavior {
	return domain.Behavior{
		SatisfiedBy: map[domain.LifecycleState][]domain.LifecycleState{
			domain.StatePresent: {domain.StateStarted, domain.StateUndeployed},
		},
		RequiresExisting: map[domain.LifecycleState]bool{
			domain.StateStarted:    true,
			domain.StateUndeployed: true,
		},
	}
}

func (p *Plugin) DecodeSpec(name string, raw map[string]any) (domain.Reconcilable, error) {
	var s Spec
	if err := spec.Decode(domain.KindCloudHubApplication, name, raw, &s); err != nil {
		return nil, err
	}
	attrs := spec.Attributes(raw, nil)
	attrs[domain.KeyName] = name
	return record{attrs: attrs}, nil
}

// ObservedState treats a deploy in flight as started; the platform
// converges it without another start.
func (p *Plugin) ObservedState(attrs domain.AttributeSet) domain.LifecycleState {
	status, _ := attrs.GetString(domain.KeyStatus)
	switch status {
	case "STARTED", "DEPLOYING":
		return domain.StateStarted
	default:
		return domain.StateUndeployed
	}
}

func (p *Plugin) Reader() ports.StateReader { return p.reader }

func (p *Plugin) Mutator() ports.Mutator { return p.mutator }

func absentMarker(name string) string {
	return fmt.Sprintf("No application with domain %s found.", name)
}

type appRecord struct {
	Domain      string `json:"domain"`
	Status      string `json:"status"`
	Region      string `json:"region"`
	MuleVersion struct {
		Version string `json:"version"`
	} `json:"muleVersion"`
	Workers struct {
		Amount int `json:"amount"`
		Type   struct {
			Name   string  `json:"name"`
			Weight float64 `json:"weight"`
		} `json:"type"`
	} `json:"workers"`
	PersistentQueues          bool           `json:"persistentQueues"`
	PersistentQueuesEncrypted bool           `json:"persistentQueuesEncrypted"`
	StaticIPsEnabled          bool           `json:"staticIPsEnabled"`
	ObjectStoreV1             bool           `json:"objectStoreV1"`
	MonitoringAutoRestart     bool           `json:"monitoringAutoRestart"`
	Properties                map[string]any `json:"properties"`
}

func appAttributes(a appRecord) domain.AttributeSet {
	return domain.AttributeSet{
		domain.KeyID:                  a.Domain,
		domain.KeyName:                a.Domain,
		domain.KeyStatus:              a.Status,
		domain.KeyRegion:              a.Region,
		domain.AppRuntimeKey:          a.MuleVersion.Version,
		domain.AppWorkersKey:          a.Workers.Amount,
		domain.AppWorkerSizeKey:       a.Workers.Type.Weight,
		domain.AppPersistentQueuesKey: a.PersistentQueues,
		domain.AppPQEncryptedKey:      a.PersistentQueuesEncrypted,
		domain.AppStaticIPsEnabledKey: a.StaticIPsEnabled,
		domain.AppObjectStoreV1Key:    a.ObjectStoreV1,
		domain.AppAutoRestartKey:      a.MonitoringAutoRestart,
		domain.AppPropertiesKey:       a.Properties,
	}
}

type Reader struct {
	run runner
}

// Find describes the application by domain name. The CLI reports a
// missing application as a failure, so that failure is translated back
// into plain absence. An application the platform already deleted but
// still lists is absent as well.
func (r *Reader) Find(ctx context.Context, key domain.LookupKey) (domain.AttributeSet, bool, error) {
	name := key.Name
	if name == "" {
		name = key.ID
	}

	var app appRecord
	res, err := r.run.RunJSON(ctx, &app, "runtime-mgr", "cloudhub-application", "describe", name)
	if err != nil {
		if res.Matches(absentMarker(name)) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if app.Status == "DELETED" {
		return nil, false, nil
	}
	return appAttributes(app), true, nil
}

func (r *Reader) FindChild(ctx context.Context, parent domain.LookupKey, match ports.ChildMatcher) (domain.AttributeSet, bool, error) {
	return nil, false, errors.New(errors.CodeInternal,
		"CloudHub applications are looked up by domain name, not by parent walk")
}
