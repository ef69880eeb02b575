package workload

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/docbench/docbench/pkg/binding"
	"github.com/docbench/docbench/pkg/logger"
)

// Report summarizes one completed phase.
type Report struct {
	Operations int64
	Errors     int64
	Elapsed    time.Duration
	Throughput float64 // operations per second
}

func (r *Report) String() string {
	return fmt.Sprintf("%d operations (%d errors) in %v, %.1f ops/sec",
		r.Operations, r.Errors, r.Elapsed.Round(time.Millisecond), r.Throughput)
}

// Runner drives one binding with concurrent workers. Each worker owns one
// binding instance for the duration of a phase (init, operate, cleanup);
// instances of the same binding share one physical connection handle.
type Runner struct {
	bindingName string
	cfg         Config
	props       binding.Properties
	log         *logger.Logger

	// sequence hands out record numbers for inserts, shared by all workers
	// and carried across phases.
	sequence atomic.Int64
}

// NewRunner creates a runner for the named binding.
func NewRunner(bindingName string, cfg Config, props binding.Properties, log *logger.Logger) *Runner {
	return &Runner{
		bindingName: bindingName,
		cfg:         cfg,
		props:       props,
		log:         log,
	}
}

// Load inserts the configured record set.
func (r *Runner) Load(ctx context.Context) (*Report, error) {
	r.sequence.Store(0)
	return r.execute(ctx, r.cfg.RecordCount, func(ctx context.Context, db binding.DB, g *generator) (operation, binding.Status) {
		return opInsert, db.Insert(ctx, r.cfg.Table, g.nextInsertKey(), g.buildRecord())
	})
}

// Run executes the configured operation mix against the loaded record set.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	r.sequence.Store(int64(r.cfg.RecordCount))
	return r.execute(ctx, r.cfg.OperationCount, func(ctx context.Context, db binding.DB, g *generator) (operation, binding.Status) {
		op := g.nextOperation()
		switch op {
		case opRead:
			result := make(binding.Record)
			return op, db.Read(ctx, r.cfg.Table, g.randomKey(), nil, result)
		case opUpdate:
			return op, db.Update(ctx, r.cfg.Table, g.randomKey(), g.buildUpdate())
		case opInsert:
			return op, db.Insert(ctx, r.cfg.Table, g.nextInsertKey(), g.buildRecord())
		default:
			var results []binding.Record
			return op, db.Scan(ctx, r.cfg.Table, g.randomKey(), g.scanLength(), nil, &results)
		}
	})
}

type step func(context.Context, binding.DB, *generator) (operation, binding.Status)

// execute splits total operations across the configured workers, waits for
// all of them, and aggregates the counters into a report.
func (r *Runner) execute(ctx context.Context, total int, step step) (*Report, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}

	dbs, err := r.initWorkers()
	if err != nil {
		return nil, err
	}
	defer r.cleanupWorkers(dbs)

	var (
		operations atomic.Int64
		failures   atomic.Int64
		wg         sync.WaitGroup
	)

	start := time.Now()

	share := total / len(dbs)
	remainder := total % len(dbs)
	for i, db := range dbs {
		count := share
		if i < remainder {
			count++
		}
		if count == 0 {
			continue
		}

		wg.Add(1)
		go func(db binding.DB, count int, seed int64) {
			defer wg.Done()

			g := newGenerator(r.cfg, seed, &r.sequence)
			for j := 0; j < count; j++ {
				if ctx.Err() != nil {
					return
				}

				opStart := time.Now()
				op, status := step(ctx, db, g)
				observe(op, opStart, status)

				operations.Add(1)
				if status != binding.StatusOK {
					failures.Add(1)
				}
			}
		}(db, count, int64(i)+1)
	}

	wg.Wait()
	elapsed := time.Since(start)

	report := &Report{
		Operations: operations.Load(),
		Errors:     failures.Load(),
		Elapsed:    elapsed,
	}
	if elapsed > 0 {
		report.Throughput = float64(report.Operations) / elapsed.Seconds()
	}
	return report, ctx.Err()
}

// initWorkers creates and initializes one binding instance per worker. On
// any init failure the already-initialized instances are cleaned up and the
// failure is returned, so a misconfigured workload aborts before running.
func (r *Runner) initWorkers() ([]binding.DB, error) {
	dbs := make([]binding.DB, 0, r.cfg.Threads)
	for i := 0; i < r.cfg.Threads; i++ {
		db, err := binding.Create(r.bindingName, r.log)
		if err != nil {
			r.cleanupWorkers(dbs)
			return nil, err
		}
		if err := db.Init(r.props); err != nil {
			r.cleanupWorkers(dbs)
			return nil, err
		}
		dbs = append(dbs, db)
	}
	return dbs, nil
}

func (r *Runner) cleanupWorkers(dbs []binding.DB) {
	for _, db := range dbs {
		if err := db.Cleanup(); err != nil {
			r.log.Errorf("binding cleanup: %v", err)
		}
	}
}

// observe records the per-operation latency histogram and error counter.
func observe(op operation, start time.Time, status binding.Status) {
	metrics.GetOrCreateHistogram(fmt.Sprintf(`docbench_operation_duration_seconds{operation=%q}`, op)).UpdateDuration(start)
	metrics.GetOrCreateCounter(fmt.Sprintf(`docbench_operations_total{operation=%q}`, op)).Inc()
	if status != binding.StatusOK {
		metrics.GetOrCreateCounter(fmt.Sprintf(`docbench_operation_errors_total{operation=%q}`, op)).Inc()
	}
}
