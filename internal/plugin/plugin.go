// Package plugin adapts the provisioning engine to the host tool's
// lifecycle hooks. The adapter owns an explicit state machine so that
// multi-step lifecycles run the install logic exactly once per process,
// without any process-wide flags.
package plugin

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/corewp/corewp/internal/config"
	"github.com/corewp/corewp/internal/logging"
	"github.com/corewp/corewp/internal/manifest"
	"github.com/corewp/corewp/internal/wpcore"
)

// State tracks the adapter's progress through one process lifetime.
type State int

const (
	// StateNotStarted means Activate has not run yet.
	StateNotStarted State = iota

	// StateInstallerRegistered means configuration is resolved and the
	// adapter is ready to handle a lifecycle hook.
	StateInstallerRegistered

	// StateInstalled means a hook already ran to completion; further
	// hooks in the same process are no-ops.
	StateInstalled
)

// String returns a readable state name for logging.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateInstallerRegistered:
		return "installer-registered"
	case StateInstalled:
		return "installed"
	default:
		return "unknown"
	}
}

// ErrNotActivated is returned when a lifecycle hook fires before
// Activate resolved the configuration.
var ErrNotActivated = errors.New("plugin not activated")

// payloadInstaller is the single capability the adapter needs from the
// installer.
type payloadInstaller interface {
	Install(ctx context.Context, v wpcore.Version, req wpcore.InstallRequest) error
}

// Plugin is the lifecycle adapter instance. It is not safe for
// concurrent use; the host lifecycle is sequential.
type Plugin struct {
	state     State
	cfg       config.Effective
	engine    *wpcore.DecisionEngine
	installer payloadInstaller
}

// New wires an adapter with the real catalog, resolver, decision engine,
// and installer. All per-run caches live on these instances and are
// discarded with the adapter.
func New() *Plugin {
	resolver := wpcore.NewResolver(wpcore.NewCatalog())
	return &Plugin{
		engine:    wpcore.NewDecisionEngine(resolver),
		installer: wpcore.NewInstaller(),
	}
}

// NewWith wires an adapter with explicit collaborators.
func NewWith(engine *wpcore.DecisionEngine, installer payloadInstaller) *Plugin {
	return &Plugin{engine: engine, installer: installer}
}

// State returns the adapter's current lifecycle state.
func (p *Plugin) State() State {
	return p.state
}

// Config returns the effective configuration resolved at activation.
func (p *Plugin) Config() config.Effective {
	return p.cfg
}

// Activate resolves the effective configuration from the host manifest.
// It runs once; repeated activations are ignored.
func (p *Plugin) Activate(ctx context.Context, m *manifest.Manifest) {
	if p.state != StateNotStarted {
		return
	}

	p.cfg = config.Resolve(m.Extra, m.Requires)
	if m.Dir != "" && !filepath.IsAbs(p.cfg.TargetDir) {
		p.cfg.TargetDir = filepath.Join(m.Dir, p.cfg.TargetDir)
	}
	p.state = StateInstallerRegistered

	logging.FromContext(ctx).Debug().
		Str("component", "plugin").
		Str("operation", "activate").
		Str("constraint", p.cfg.VersionConstraint).
		Str("target_dir", p.cfg.TargetDir).
		Bool("no_content", p.cfg.NoContent).
		Msg("plugin activated")
}

// Install handles the host's pre-install hook: lenient about an
// already-present version that satisfies the constraint.
func (p *Plugin) Install(ctx context.Context) error {
	return p.run(ctx, false)
}

// Update handles the host's pre-update hook: always re-resolves the
// constraint and replaces the payload when the result differs.
func (p *Plugin) Update(ctx context.Context) error {
	return p.run(ctx, true)
}

func (p *Plugin) run(ctx context.Context, updateContext bool) error {
	log := logging.FromContext(ctx)

	switch p.state {
	case StateNotStarted:
		return ErrNotActivated
	case StateInstalled:
		log.Debug().
			Str("component", "plugin").
			Str("state", p.state.String()).
			Msg("lifecycle hook already handled this process")
		return nil
	case StateInstallerRegistered:
		// Proceed.
	}

	// Installed state is always re-probed from disk; the target directory
	// may have changed since the last invocation.
	installed := wpcore.ProbeInstalled(p.cfg.TargetDir)

	decision, err := p.engine.Decide(ctx, p.cfg.VersionConstraint, installed, updateContext)
	if err != nil {
		return err
	}

	if !decision.ShouldInstall {
		log.Info().
			Str("component", "plugin").
			Str("version", decision.Version.String()).
			Msg("installed version is acceptable, nothing to do")
		p.state = StateInstalled
		return nil
	}

	req := wpcore.InstallRequest{
		TargetDir: p.cfg.TargetDir,
		NoContent: p.cfg.NoContent,
	}
	if installErr := p.installer.Install(ctx, decision.Version, req); installErr != nil {
		return installErr
	}

	p.state = StateInstalled
	return nil
}
