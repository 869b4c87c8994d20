// Package module wires survey sync into the process using modkit
package module

import (
	"context"
	"strconv"
	"time"

	"surveysync/internal/adapters/ingest/ovation"
	modkit "surveysync/internal/modkit"
	"surveysync/internal/modkit/httpkit"
	"surveysync/internal/modkit/repokit"
	perr "surveysync/internal/platform/errors"
	str "surveysync/internal/platform/strings"
	"surveysync/internal/services/surveysync/guardrails"
	synchttp "surveysync/internal/services/surveysync/http"
	"surveysync/internal/services/surveysync/ingest"
	syncrepo "surveysync/internal/services/surveysync/repo"
	syncsvc "surveysync/internal/services/surveysync/service"
)

// Module implements the survey sync module
type Module struct {
	deps  modkit.Deps
	built modkit.Built
	opts  Options
	ports Ports

	svc   *syncsvc.Service
	sched *syncsvc.Scheduler
}

var _ modkit.Module = (*Module)(nil)

// New constructs the survey sync module from validated options
// routes mount at the root unless WithPrefix is given
func New(deps modkit.Deps, o Options, mopts ...modkit.Option) (*Module, error) {
	if deps.PG == nil {
		return nil, perr.New(perr.ErrorCodeUnavailable, "survey sync requires a postgres runner")
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	b := modkit.Build(append([]modkit.Option{modkit.WithName("surveysync")}, mopts...)...)

	client := ovation.NewClient(o.Ovation)
	if o.HTTPClient != nil {
		client = client.WithHTTPClient(o.HTTPClient)
	}

	db := deps.PG
	if o.DBTimeout > 0 {
		db = repokit.WithBeginHooks(db, statementTimeout(o.DBTimeout))
	}

	svc := syncsvc.New(
		db,
		syncrepo.NewPG(),
		ingest.NewAuthenticator(client),
		ingest.NewSource(client),
		o.serviceConfig(),
	)
	if o.Lease {
		svc = svc.WithLease(guardrails.MakeAdvisoryLease(deps.PG, guardrails.LeaseKey))
	}

	m := &Module{
		deps:  deps,
		built: b,
		opts:  o,
		ports: Ports{Sync: svc},
		svc:   svc,
		sched: &syncsvc.Scheduler{
			Runner:       svc,
			Interval:     o.Interval,
			InitialDelay: o.InitialDelay,
		},
	}
	return m, nil
}

// MountRoutes mounts the sync endpoints, at the root unless a prefix was given
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(rr httpkit.Router) { synchttp.Register(rr, m.svc) })
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.built.Name, "module name") }

// Prefix returns the route prefix, empty when mounted at the root
func (m *Module) Prefix() string {
	if m.built.Prefix == "" {
		return ""
	}
	return str.MustPrefix(m.built.Prefix)
}

// Scheduler returns the periodic trigger bound to this module's service
func (m *Module) Scheduler() *syncsvc.Scheduler { return m.sched }

// statementTimeout bounds every statement inside a write transaction
func statementTimeout(d time.Duration) repokit.BeginHook {
	ms := strconv.FormatInt(d.Milliseconds(), 10)
	return func(ctx context.Context, q repokit.Queryer) error {
		_, err := q.Exec(ctx, `SELECT set_config('statement_timeout', $1, true)`, ms)
		return err
	}
}
