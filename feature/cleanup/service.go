package cleanup

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"site-cleaner/core/cleaner"
	"site-cleaner/core/manifest"
	"site-cleaner/core/metrics"
	"site-cleaner/feature/cleanup/models"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrInvalidRequest is returned when a request cannot be resolved to a destination.
	ErrInvalidRequest = errors.New("invalid cleanup request")

	// ErrHistoryUnavailable is returned when no database is configured.
	ErrHistoryUnavailable = errors.New("cleanup history requires a database")
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// Request selects what to clean. Empty fields fall back to the configured defaults.
// A destination other than the configured one must lie within an allowed root.
type Request struct {
	// Destination is the build-output directory.
	Destination string `json:"destination"`
	// Keep replaces the configured keep patterns when not null. An empty list keeps nothing.
	Keep []string `json:"keep"`
	// Source names the manifest source.
	Source string `json:"source"`
	// DryRun computes and records the plan without removing anything.
	DryRun bool `json:"dry_run"`
	// Origin identifies the caller in run history.
	Origin string `json:"-"`
}

// Result is the outcome of a plan or apply call.
type Result struct {
	Plan    *cleaner.Plan `json:"plan"`
	Roots   []string      `json:"roots"`
	Source  string        `json:"source"`
	Removed int           `json:"removed"`
	DryRun  bool          `json:"dry_run"`
	RunID   uint          `json:"run_id,omitempty"`
	// Reclaimed is the size of the plain files actually removed.
	Reclaimed int64 `json:"reclaimed_bytes"`
}

// Service plans and applies cleanups of destination roots.
type Service struct {
	fs      afero.Fs
	sources *manifest.Registry
	cache   *manifest.Cache
	cfg     cleaner.Config
	logger  *zap.Logger
	db      *gorm.DB
	locks   *destinationLocks
	now     func() time.Time
}

// NewService creates a new cleanup service. db may be nil, in which case runs are
// not recorded.
func NewService(fsys afero.Fs, sources *manifest.Registry, cache *manifest.Cache, cfg cleaner.Config, logger *zap.Logger, db *gorm.DB) *Service {
	if cache == nil {
		cache = manifest.NewCache(cfg.CacheTTL())
	}
	return &Service{
		fs:      fsys,
		sources: sources,
		cache:   cache,
		cfg:     cfg,
		logger:  logger,
		db:      db,
		locks:   newDestinationLocks(),
		now:     time.Now,
	}
}

// Plan computes the cleanup of a destination without touching it.
func (s *Service) Plan(ctx context.Context, req Request) (*Result, error) {
	r, src, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(r.Root())
	defer unlock()

	plan, err := s.plan(ctx, r, src)
	if err != nil {
		metrics.ObserveRun(metrics.OutcomeFailed, 0, 0)
		return nil, err
	}
	metrics.ObserveRun(metrics.OutcomePlanned, 0, 0)

	return &Result{Plan: plan, Roots: plan.Roots(), Source: src.Name(), DryRun: true}, nil
}

// Apply plans and executes the cleanup of a destination. Every call is recorded
// when a database is configured, failed ones included.
func (s *Service) Apply(ctx context.Context, req Request) (*Result, error) {
	r, src, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(r.Root())
	defer unlock()

	return s.execute(ctx, r, src, req, nil)
}

// ApplyPlan executes a plan returned by Plan exactly as it was computed. Paths that
// appeared after planning are left alone. The plan must belong to the destination
// the request resolves to.
func (s *Service) ApplyPlan(ctx context.Context, req Request, plan *cleaner.Plan) (*Result, error) {
	if plan == nil {
		return nil, fmt.Errorf("%w: plan is required", ErrInvalidRequest)
	}
	r, src, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	if plan.Root != r.Root() {
		return nil, fmt.Errorf("%w: %v: %s", ErrInvalidRequest, cleaner.ErrRootMismatch, plan.Root)
	}

	unlock := s.locks.lock(r.Root())
	defer unlock()

	return s.execute(ctx, r, src, req, plan)
}

// execute applies plan, or a fresh plan when nil, and records the run.
func (s *Service) execute(ctx context.Context, r *cleaner.Reconciler, src manifest.Source, req Request, plan *cleaner.Plan) (*Result, error) {
	run := &models.CleanupRun{
		Destination: r.Root(),
		Source:      src.Name(),
		Origin:      req.Origin,
		DryRun:      req.DryRun,
		StartedAt:   s.now(),
	}

	result, err := s.apply(ctx, r, src, plan, req.DryRun)
	run.FinishedAt = s.now()
	if result != nil {
		run.Obsolete = result.Plan.Summary.Obsolete
		run.Removed = result.Removed
		run.ReclaimBytes = result.Reclaimed
	}

	switch {
	case err != nil:
		run.Outcome = metrics.OutcomeFailed
		run.Error = err.Error()
	case req.DryRun:
		run.Outcome = metrics.OutcomeDryRun
	default:
		run.Outcome = metrics.OutcomeApplied
	}
	metrics.ObserveRun(run.Outcome, run.Removed, run.ReclaimBytes)
	s.record(ctx, run)

	if result != nil {
		result.RunID = run.ID
	}
	return result, err
}

func (s *Service) apply(ctx context.Context, r *cleaner.Reconciler, src manifest.Source, plan *cleaner.Plan, dryRun bool) (*Result, error) {
	if plan == nil {
		var err error
		if plan, err = s.plan(ctx, r, src); err != nil {
			return nil, err
		}
	}
	result := &Result{Plan: plan, Roots: plan.Roots(), Source: src.Name(), DryRun: dryRun}

	if dryRun || plan.Empty() {
		return result, nil
	}

	executed, err := r.Apply(ctx, plan, cleaner.Options{})
	result.Removed = executed
	for _, a := range plan.Actions[:executed] {
		result.Reclaimed += a.Size
		s.logger.Debug("Removed obsolete path",
			zap.String("type", string(a.Type)),
			zap.String("path", a.Path),
		)
	}
	if err != nil {
		s.logger.Error("Cleanup stopped", zap.String("root", r.Root()), zap.Int("removed", executed), zap.Error(err))
		return result, err
	}

	s.logger.Info("Cleanup applied",
		zap.String("root", r.Root()),
		zap.Int("removed", executed),
		zap.Int64("reclaimed_bytes", result.Reclaimed),
	)
	return result, nil
}

func (s *Service) plan(ctx context.Context, r *cleaner.Reconciler, src manifest.Source) (*cleaner.Plan, error) {
	files, err := s.cache.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to load site files from %s: %w", src.Name(), err)
	}

	plan, err := r.Plan(cleaner.Files(files...))
	if err != nil {
		return nil, err
	}

	sum := plan.Summary
	s.logger.Info("Cleanup planned",
		zap.String("root", r.Root()),
		zap.String("source", src.Name()),
		zap.Int("existing", sum.Existing),
		zap.Int("kept", sum.Kept),
		zap.Int("desired_files", sum.DesiredFiles),
		zap.Int("type_conflicts", sum.TypeConflicts),
		zap.Int("obsolete", sum.Obsolete),
	)
	return plan, nil
}

// resolve applies configured defaults to req.
func (s *Service) resolve(req Request) (*cleaner.Reconciler, manifest.Source, error) {
	dest := req.Destination
	if dest == "" {
		dest = s.cfg.Destination
	}
	if dest == "" {
		return nil, nil, fmt.Errorf("%w: destination is required", ErrInvalidRequest)
	}
	dest, err := filepath.Abs(dest)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if !s.destinationAllowed(dest) {
		return nil, nil, fmt.Errorf("%w: destination %s is not allowed", ErrInvalidRequest, dest)
	}

	keep := req.Keep
	if keep == nil {
		keep = s.cfg.KeepPatterns()
	}

	name := req.Source
	if name == "" {
		name = s.cfg.Source
	}
	src, err := s.sources.Get(name)
	if err != nil {
		return nil, nil, err
	}

	r, err := cleaner.New(s.fs, dest, keep)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return r, src, nil
}

// destinationAllowed reports whether dest is the configured destination or lies
// within one of the allowed roots. dest must be absolute and clean.
func (s *Service) destinationAllowed(dest string) bool {
	if s.cfg.Destination != "" {
		if configured, err := filepath.Abs(s.cfg.Destination); err == nil && configured == dest {
			return true
		}
	}
	for _, root := range s.cfg.AllowedRootList() {
		if !filepath.IsAbs(root) {
			continue
		}
		rel, err := filepath.Rel(root, dest)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (s *Service) record(ctx context.Context, run *models.CleanupRun) {
	if s.db == nil {
		return
	}
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		s.logger.Warn("Failed to record cleanup run", zap.String("root", run.Destination), zap.Error(err))
	}
}

// History returns the most recent runs, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]models.CleanupRun, error) {
	if s.db == nil {
		return nil, ErrHistoryUnavailable
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	var runs []models.CleanupRun
	if err := s.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to load cleanup history: %w", err)
	}
	return runs, nil
}

// Sources returns the names of the configured manifest sources.
func (s *Service) Sources() []string {
	return s.sources.Names()
}
