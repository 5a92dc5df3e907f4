package sync

import (
	"context"
	"log/slog"
	"strconv"
	gosync "sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/gorohovAv/fit-plot-sub000/internal/model"
	"github.com/gorohovAv/fit-plot-sub000/internal/store"
)

const (
	otelScope     = "fitplot/sync"
	spanSyncPass  = "sync.pass"
	metricPasses  = "fitplot.sync.passes"
	metricRows    = "fitplot.sync.rows"
	metricSkipped = "fitplot.sync.skipped"
	metricErrors  = "fitplot.sync.errors"
)

// Mirror is the sync middleware: it observes every state transition of
// the reactive store and re-persists the changed top-level slices into
// storage. Passes are fire-and-forget — the in-memory state is the
// ground truth and the database a best-effort mirror, so persistence
// errors abandon the pass and the next mutation heals any divergence.
type Mirror struct {
	persist Persister
	gate    *Gate
	log     *slog.Logger
	wg      gosync.WaitGroup

	// OTel instruments — always non-nil (no-op when telemetry is disabled).
	tracer     trace.Tracer
	cntPasses  metric.Int64Counter
	cntRows    metric.Int64Counter
	cntSkipped metric.Int64Counter
	cntErrors  metric.Int64Counter
}

// NewMirror creates a Mirror wired to the given persister and gate.
func NewMirror(persist Persister, gate *Gate, logger *slog.Logger) *Mirror {
	tracer := otel.Tracer(otelScope)
	meter := otel.Meter(otelScope)

	mustCounter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			logger.Error("creating OTel counter", "name", name, "error", err)
			return noop.Int64Counter{}
		}
		return c
	}

	return &Mirror{
		persist: persist,
		gate:    gate,
		log:     logger,

		tracer:     tracer,
		cntPasses:  mustCounter(metricPasses, "Number of mirror passes started"),
		cntRows:    mustCounter(metricRows, "Number of rows written by mirror passes"),
		cntSkipped: mustCounter(metricSkipped, "Number of malformed records skipped during mirroring"),
		cntErrors:  mustCounter(metricErrors, "Number of abandoned mirror passes"),
	}
}

// Interceptor returns the store hook that triggers a mirror pass after
// every state transition. The hook returns immediately: the pass runs on
// its own goroutine and its completion is never awaited by the mutating
// caller. While the gate is closed the hook does nothing at all.
func (m *Mirror) Interceptor() store.Interceptor {
	return func(prev, next model.AppState) {
		if !m.gate.Open() {
			return
		}
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.SyncPass(context.Background(), &prev, &next)
		}()
	}
}

// Wait blocks until all in-flight passes have finished. Used at shutdown
// and by tests; ordinary mutation paths never call it.
func (m *Mirror) Wait() {
	m.wg.Wait()
}

// SyncPass diffs the previous and new states and persists whatever
// changed. Persistence errors are logged and the pass abandoned; nothing
// propagates to the caller and the in-memory state is never reverted.
// Re-running a pass over an unchanged tree is harmless because every
// write is an idempotent upsert.
func (m *Mirror) SyncPass(ctx context.Context, prev, next *model.AppState) {
	if prev == nil || next == nil {
		m.log.Warn("sync pass invoked without both states, skipping")
		return
	}

	ctx, span := m.tracer.Start(ctx, spanSyncPass)
	defer span.End()
	m.cntPasses.Add(ctx, 1)

	var written, skipped int64
	err := m.syncChanged(ctx, prev, next, &written, &skipped)

	if written > 0 {
		m.cntRows.Add(ctx, written)
	}
	if skipped > 0 {
		m.cntSkipped.Add(ctx, skipped)
	}
	span.SetAttributes(
		attribute.Int64("sync.rows", written),
		attribute.Int64("sync.skipped", skipped),
	)
	if err != nil {
		m.cntErrors.Add(ctx, 1)
		span.RecordError(err)
		m.log.Error("mirror pass abandoned", "error", err)
	}
}

// syncChanged performs the actual slice-by-slice diff. It stops at the
// first persistence error; partial writes are acceptable because the
// next successful pass re-persists the full changed slices.
func (m *Mirror) syncChanged(ctx context.Context, prev, next *model.AppState, written, skipped *int64) error {
	if !sameSlice(prev.Plans, next.Plans) {
		if err := m.syncPlans(ctx, next.Plans, written, skipped); err != nil {
			return err
		}
	}

	if prev.Settings != next.Settings {
		// All three keys are rewritten even when only one changed;
		// simplicity over minimality.
		if err := m.syncSettings(ctx, next.Settings); err != nil {
			return err
		}
		*written += 3
	}

	if !sameSlice(prev.Calories, next.Calories) {
		for _, entry := range next.Calories {
			if err := m.persist.SaveCalorieEntry(ctx, entry); err != nil {
				return err
			}
			*written++
		}
	}

	if next.MaintenanceCalories != nil && !sameMaintenance(prev.MaintenanceCalories, next.MaintenanceCalories) {
		if err := m.persist.SaveMaintenanceCalories(ctx, *next.MaintenanceCalories); err != nil {
			return err
		}
		*written++
	}

	return nil
}

// syncPlans re-persists the entire plans tree. This is a deliberate
// full-tree resync, not a computed delta: it keeps concurrent passes
// convergent and lets a later pass heal a partially-written earlier one.
// Records missing their identifying fields are skipped with a warning,
// never surfaced. Duplicate plan names collapse last-write-wins on the
// plan_name key in storage; the in-memory store tolerates them.
func (m *Mirror) syncPlans(ctx context.Context, plans []model.Plan, written, skipped *int64) error {
	for _, plan := range plans {
		if plan.Name == "" {
			m.log.Warn("skipping plan without a name")
			*skipped++
			continue
		}
		if err := m.persist.SavePlan(ctx, plan.Name); err != nil {
			return err
		}
		*written++

		for _, tr := range plan.Trainings {
			if tr.ID == "" || tr.Name == "" {
				m.log.Warn("skipping training without id or name", "plan", plan.Name)
				*skipped++
				continue
			}
			// Reparenting under a new plan is just a re-upsert with the
			// new plan name as the foreign key.
			if err := m.persist.SaveTraining(ctx, tr.ID, plan.Name, tr.Name); err != nil {
				return err
			}
			*written++

			for _, ex := range tr.Exercises {
				if ex.ID == "" {
					m.log.Warn("skipping exercise without id", "training", tr.Name)
					*skipped++
					continue
				}
				if err := m.persist.SaveExercise(ctx, tr.ID, ex); err != nil {
					return err
				}
				*written++
			}

			for _, res := range tr.Results {
				if res.ExerciseID == "" {
					m.log.Warn("skipping result without exercise id", "training", tr.Name)
					*skipped++
					continue
				}
				if err := m.persist.SaveResult(ctx, res.Row()); err != nil {
					return err
				}
				*written++
			}

			for _, pr := range tr.PlannedResults {
				if pr.ExerciseID == "" {
					m.log.Warn("skipping planned result without exercise id", "training", tr.Name)
					*skipped++
					continue
				}
				if err := m.persist.SaveResult(ctx, pr.Row()); err != nil {
					return err
				}
				*written++
			}
		}
	}
	return nil
}

// syncSettings rewrites the three settings keys as strings.
func (m *Mirror) syncSettings(ctx context.Context, s model.Settings) error {
	if err := m.persist.SaveSetting(ctx, model.SettingTheme, string(s.Theme)); err != nil {
		return err
	}
	if err := m.persist.SaveSetting(ctx, model.SettingWeight, strconv.FormatFloat(s.Weight, 'f', -1, 64)); err != nil {
		return err
	}
	return m.persist.SaveSetting(ctx, model.SettingDevMode, strconv.FormatBool(s.DevMode))
}

// sameSlice reports whether two slices are the same slice value. Under
// the store's copy-on-write discipline an unchanged top-level slice keeps
// its identity across transitions, so comparing length and first-element
// address is a valid change check.
func sameSlice[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}

func sameMaintenance(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
