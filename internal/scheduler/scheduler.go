package scheduler

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/edkuperman/pairsort/internal/dag"
)

// DAGLister enumerates stored DAG ids.
type DAGLister interface {
	IDs(ctx context.Context) ([]string, error)
}

// Finding is one stored DAG that cannot be ordered.
type Finding struct {
	DagID      string         `json:"dag_id"`
	Diagnostic dag.Diagnostic `json:"-"`
	Cycles     [][]string     `json:"cycles,omitempty"`
}

// Auditor sorts every stored DAG and reports the cyclic ones.
type Auditor struct {
	DAGs   DAGLister
	Edges  dag.EdgeSource
	Logger *log.Logger // optional
}

// Run audits all DAGs once. It stops at the first storage error.
func (a *Auditor) Run(ctx context.Context) ([]Finding, error) {
	ids, err := a.DAGs.IDs(ctx)
	if err != nil {
		return nil, err
	}

	findings := []Finding{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return findings, err
		}
		edges, err := a.Edges.Edges(ctx, id)
		if err != nil {
			return findings, err
		}
		adj, in := dag.Build(edges)
		d, ok := dag.Sort(adj, in).(dag.Diagnostic)
		if a.Logger != nil {
			a.Logger.Debug("audited dag", "dag", id, "edges", len(edges), "cyclic", ok)
		}
		if !ok {
			continue
		}
		findings = append(findings, Finding{
			DagID:      id,
			Diagnostic: d,
			Cycles:     dag.FindCycles(adj, in),
		})
	}
	return findings, nil
}

// Scheduler runs the audit on a cron schedule.
type Scheduler struct {
	auditor *Auditor
	logger  *log.Logger
	cron    *cron.Cron
}

func New(a *Auditor, logger *log.Logger) *Scheduler {
	return &Scheduler{
		auditor: a,
		logger:  logger,
		cron:    cron.New(cron.WithSeconds()),
	}
}

// Register schedules the audit with a six-field cron spec.
func (s *Scheduler) Register(ctx context.Context, spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.Tick(ctx)
	})
	if err != nil {
		return err
	}
	s.logger.Info("audit registered", "schedule", spec)
	return nil
}

// Tick runs one audit and logs what it found.
func (s *Scheduler) Tick(ctx context.Context) {
	start := time.Now()
	findings, err := s.auditor.Run(ctx)
	if err != nil {
		s.logger.Error("audit failed", "err", err)
		return
	}
	for _, f := range findings {
		s.logger.Warn("cyclic dag",
			"dag", f.DagID,
			"most_outgoing", f.Diagnostic.MostOutgoing,
			"least_incoming", f.Diagnostic.LeastIncoming,
			"cycles", len(f.Cycles))
	}
	s.logger.Info("audit done", "cyclic", len(findings), "took", time.Since(start).Round(time.Millisecond))
}

func (s *Scheduler) Start() { s.cron.Start() }
func (s *Scheduler) Stop()  { <-s.cron.Stop().Done() }
