package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/olusolaa/anypoint-reconciler/internal/adapters/journal/sqlite"
	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/cli"
	"github.com/olusolaa/anypoint-reconciler/internal/adapters/transport/rest"
	"github.com/olusolaa/anypoint-reconciler/internal/anypoint"
	"github.com/olusolaa/anypoint-reconciler/internal/config"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/core/service"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
	"github.com/olusolaa/anypoint-reconciler/internal/log"
	"github.com/olusolaa/anypoint-reconciler/internal/reporting/json"
	"github.com/olusolaa/anypoint-reconciler/internal/reporting/text"
	"github.com/olusolaa/anypoint-reconciler/internal/resources/apiinstance"
	"github.com/olusolaa/anypoint-reconciler/internal/resources/application"
	"github.com/olusolaa/anypoint-reconciler/internal/resources/automatedpolicy"
	"github.com/olusolaa/anypoint-reconciler/internal/resources/contract"
	"github.com/olusolaa/anypoint-reconciler/internal/resources/designproject"
	"github.com/olusolaa/anypoint-reconciler/internal/resources/environment"
	"github.com/olusolaa/anypoint-reconciler/internal/resources/exchangeasset"
	"github.com/olusolaa/anypoint-reconciler/internal/resources/mqdestination"
	"github.com/olusolaa/anypoint-reconciler/internal/resources/organization"
	"github.com/olusolaa/anypoint-reconciler/internal/resources/policy"
	"github.com/olusolaa/anypoint-reconciler/internal/resources/user"
)

// Build assembles a ready-to-run Application for plan and apply: config,
// logger, REST client, platform session, CLI runner, every resource
// plugin, the journal and the engine. It talks to the platform once, to
// resolve the configured organization and environment names.
func Build(ctx context.Context, v *viper.Viper, manifestPath string) (*Application, error) {
	cfg, logger, err := loadConfig(ctx, v)
	if err != nil {
		return nil, err
	}

	if cfg.Anypoint.Bearer == "" {
		return nil, errors.NewUserFacing(errors.CodePlatformAuthError,
			"no Anypoint Platform access token configured",
			"Set ANYPOINT_BEARER (or anypoint.bearer in the config file) to a valid access token.")
	}

	restClient := rest.NewClient(cfg.Anypoint.Host, cfg.Anypoint.Bearer, log.Component(logger, "rest"),
		rest.WithTimeout(time.Duration(cfg.HTTP.TimeoutSeconds)*time.Second),
		rest.WithRequestsPerSecond(cfg.HTTP.RequestsPerSecond),
	)

	session, err := anypoint.Open(ctx, restClient, cfg.Anypoint.Organization, cfg.Anypoint.Environment,
		log.Component(logger, "session"))
	if err != nil {
		return nil, err
	}
	logger.Infof(ctx, "Session opened for business group '%s' (environment '%s')",
		session.OrganizationName, session.EnvironmentName)

	runner, err := cli.NewRunner(cli.Options{
		Binary:       cfg.CLI.Binary,
		Host:         cliHost(cfg.Anypoint.Host),
		Bearer:       cfg.Anypoint.Bearer,
		Organization: session.OrganizationName,
		Environment:  session.EnvironmentName,
	}, log.Component(logger, "cli"))
	if err != nil {
		return nil, err
	}

	registry := service.NewPluginRegistry()
	plugins := []ports.ResourcePlugin{
		organization.New(restClient, session, logger),
		environment.New(runner, session, logger),
		user.New(restClient, session, logger),
		exchangeasset.New(runner, restClient, session, logger),
		apiinstance.New(runner, logger),
		policy.New(runner, logger),
		automatedpolicy.New(restClient, session, logger),
		contract.New(restClient, session, logger),
		mqdestination.New(restClient, session, logger),
		application.New(runner, logger),
		designproject.New(runner, restClient, session, logger),
	}
	for _, p := range plugins {
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}
	logger.Debugf(ctx, "Registered resource kinds: %v", registry.Kinds())

	reporter, err := newReporter(cfg, logger)
	if err != nil {
		return nil, err
	}

	var (
		store   *sqlite.Store
		journal ports.Journal
	)
	if !cfg.Journal.Disabled {
		store, err = openJournal(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		journal = store
	}

	engine, err := service.NewEngine(
		registry,
		service.NewDriver(log.Component(logger, "driver")),
		journal,
		log.Component(logger, "engine"),
		cfg.Settings.Concurrency,
		manifestPath,
	)
	if err != nil {
		return nil, err
	}

	return &Application{
		Config:       cfg,
		Logger:       logger,
		Engine:       engine,
		Reporter:     reporter,
		ManifestPath: manifestPath,
		journal:      store,
	}, nil
}

func loadConfig(ctx context.Context, v *viper.Viper) (*config.Config, ports.Logger, error) {
	cfg := config.DefaultConfig()
	err := v.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) { dc.TagName = "yaml" })
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeConfigReadError, "unmarshalling configuration")
	}

	logger, err := log.NewLogger(log.Config{Level: cfg.Settings.LogLevel, Format: cfg.Settings.LogFormat})
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeInternal, "initializing the logger")
	}
	if v.ConfigFileUsed() != "" {
		logger.Debugf(ctx, "Using configuration file %s", v.ConfigFileUsed())
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(ctx, cfg); err != nil {
		var details strings.Builder
		details.WriteString("configuration validation failed:")
		var fieldErrs validator.ValidationErrors
		if stderrors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				details.WriteString(fmt.Sprintf("\n - field '%s' failed '%s' (value: '%v')",
					fe.Namespace(), fe.Tag(), fe.Value()))
			}
		} else {
			details.WriteString(" " + err.Error())
		}
		return nil, nil, errors.NewUserFacing(errors.CodeConfigValidation, details.String(),
			"Check the configuration file and flags.")
	}
	return cfg, logger, nil
}

func newReporter(cfg *config.Config, logger ports.Logger) (ports.Reporter, error) {
	switch cfg.Settings.Reporter {
	case json.ReporterTypeJSON:
		return json.NewReporter(json.Config{}, log.Component(logger, "reporter"))
	default:
		return text.NewReporter(text.Config{NoColor: cfg.Settings.NoColor}, log.Component(logger, "reporter"))
	}
}

func openJournal(ctx context.Context, cfg *config.Config, logger ports.Logger) (*sqlite.Store, error) {
	path := cfg.Journal.Path
	if path == "" {
		var err error
		if path, err = sqlite.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return sqlite.Open(ctx, path, log.Component(logger, "journal"))
}

// cliHost strips the URL down to the host name anypoint-cli expects.
func cliHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}
