// Package monitor implements the periodic probe sweep: on each tick, every
// configured provider's endpoints are queried concurrently, raw results
// are persisted and observed on the metrics sink, and each provider's
// composite score is handed to a caller-supplied handler (in production
// it records the score; the serve loop calls the state machine's
// Evaluate once per sweep).
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"gitlab.bluewillows.net/root/failoverctl/internal/clock"
	"gitlab.bluewillows.net/root/failoverctl/internal/probe"
	"gitlab.bluewillows.net/root/failoverctl/internal/scorer"
	"gitlab.bluewillows.net/root/failoverctl/pkg/provider"
)

// DNSQuery is the injected DNS primitive the Monitor probes providers
// with. Implementations may suspend. A result of success=false with an
// empty errMsg is recorded with err's text as its error, or "unknown"
// when err is nil (see probeOne).
type DNSQuery interface {
	Query(ctx context.Context, nameserverHost, domain string) (success bool, errMsg string, err error)
}

// ResultSink is the subset of the StorageSink contract the Monitor
// depends on.
type ResultSink interface {
	SaveResult(ctx context.Context, r probe.Result) error
}

// MetricsSink is the subset of the MetricsSink contract the Monitor
// depends on.
type MetricsSink interface {
	ObserveDuration(providerID, endpoint string, seconds float64)
	IncSuccess(providerID, endpoint string)
	IncFailure(providerID, endpoint string)
	SetHealthScore(providerID string, score float64)
}

// ScoreHandler receives each provider's freshly computed score after a
// sweep completes probing that provider's endpoints.
type ScoreHandler func(ctx context.Context, providerID string, score scorer.Score)

// Config configures a Monitor.
type Config struct {
	Providers    *provider.Registry
	Query        DNSQuery
	Storage      ResultSink
	Metrics      MetricsSink
	Clock        clock.Clock
	Logger       *slog.Logger
	Zone         string
	OnScore      ScoreHandler
	PoolSize     int
	DrainTimeout time.Duration
}

// Monitor probes every configured provider's endpoints on each tick.
type Monitor struct {
	providers    *provider.Registry
	query        DNSQuery
	storage      ResultSink
	metrics      MetricsSink
	clock        clock.Clock
	logger       *slog.Logger
	zone         string
	onScore      ScoreHandler
	poolSize     int
	drainTimeout time.Duration
}

// New constructs a Monitor from cfg, applying sensible defaults for the
// worker pool size and drain timeout.
func New(cfg Config) *Monitor {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = runtime.GOMAXPROCS(0)
		if cfg.PoolSize < 2 {
			cfg.PoolSize = 2
		}
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 5 * time.Second
	}

	return &Monitor{
		providers:    cfg.Providers,
		query:        cfg.Query,
		storage:      cfg.Storage,
		metrics:      cfg.Metrics,
		clock:        cfg.Clock,
		logger:       cfg.Logger,
		zone:         cfg.Zone,
		onScore:      cfg.OnScore,
		poolSize:     cfg.PoolSize,
		drainTimeout: cfg.DrainTimeout,
	}
}

type probeJob struct {
	providerID string
	endpoint   string
}

// RunOnce executes one probe sweep across every configured provider's
// endpoints, bounded by a worker pool, and returns the ProbeResults
// grouped by provider id. It fails if a storage write fails (results
// already written before the failure remain) or if ctx is cancelled.
func (m *Monitor) RunOnce(ctx context.Context) (map[string][]probe.Result, error) {
	canary := fmt.Sprintf("_health-check.%s", m.zone)

	var jobs []probeJob
	for _, p := range m.providers.All() {
		for _, ep := range p.Endpoints {
			jobs = append(jobs, probeJob{providerID: p.ID, endpoint: ep})
		}
	}

	jobCh := make(chan probeJob)
	resultCh := make(chan probe.Result, len(jobs))
	errCh := make(chan error, 1)

	var wg sync.WaitGroup
	for i := 0; i < m.poolSize; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				result := m.probeOne(ctx, job, canary)
				if err := m.storage.SaveResult(ctx, result); err != nil {
					select {
					case errCh <- fmt.Errorf("save probe result for %s/%s: %w", job.providerID, job.endpoint, err):
					default:
					}
					continue
				}
				resultCh <- result
			}
		}()
	}

	go func() {
		defer close(jobCh)
		for _, j := range jobs {
			select {
			case jobCh <- j:
			case <-ctx.Done():
				return
			}
		}
	}()

	drained := make(chan struct{})
	go func() {
		wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
	case <-ctx.Done():
		select {
		case <-drained:
		case <-time.After(m.drainTimeout):
			m.logger.Warn("probe sweep drain timeout exceeded, returning partial results",
				slog.Duration("drain_timeout", m.drainTimeout))
		}
	}

	// resultCh is buffered to len(jobs), so workers never block on send even
	// if the drain timeout above fired before every worker finished; collect
	// whatever is already queued without waiting for stragglers.
	byProvider := make(map[string][]probe.Result)
	for {
		select {
		case r := <-resultCh:
			byProvider[r.ProviderID] = append(byProvider[r.ProviderID], r)
			continue
		default:
		}
		break
	}

	select {
	case err := <-errCh:
		return nil, err
	default:
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	for providerID, results := range byProvider {
		score := scorer.Compute(providerID, results)
		m.metrics.SetHealthScore(providerID, score.Value)
		if m.onScore != nil {
			m.onScore(ctx, providerID, score)
		}
	}

	return byProvider, nil
}

// probeOne runs a single endpoint probe, always returning a well-formed
// ProbeResult (a timeout or query error becomes success=false with a
// non-empty error message, never an aborted sweep).
func (m *Monitor) probeOne(ctx context.Context, job probeJob, domain string) probe.Result {
	start := m.clock.Now()
	success, errMsg, err := m.query.Query(ctx, job.endpoint, domain)
	elapsed := m.clock.Now().Sub(start)
	elapsedMS := elapsed.Milliseconds()
	if elapsedMS < 0 {
		elapsedMS = 0
	}

	m.metrics.ObserveDuration(job.providerID, job.endpoint, elapsed.Seconds())

	if !success {
		if errMsg == "" {
			if err != nil {
				errMsg = err.Error()
			} else {
				errMsg = "unknown"
			}
		}
		m.metrics.IncFailure(job.providerID, job.endpoint)
	} else {
		m.metrics.IncSuccess(job.providerID, job.endpoint)
	}

	return probe.Result{
		ProviderID: job.providerID,
		Endpoint:   job.endpoint,
		Domain:     domain,
		ElapsedMS:  elapsedMS,
		Success:    success,
		Error:      errMsg,
		Origin:     "monitor",
		Timestamp:  start,
	}
}

// RunForever invokes RunOnce every interval until ctx is canceled.
// Cancellation drains in-flight probes within the configured grace period
// before returning; a partial sweep's results are discarded rather than
// scored.
func (m *Monitor) RunForever(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := m.RunOnce(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				m.logger.Error("probe sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}
