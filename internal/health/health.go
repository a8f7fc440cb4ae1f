// Package health aggregates the liveness signals the serve command exposes
// at /health: database reachability, provider credentials, and the age of
// the last watchlist refresh.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Pinger is the slice of the storage layer the checker needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CredentialSource reports whether any transfer provider credential is
// configured. Implementations must answer without touching the network.
type CredentialSource interface {
	HasAnyAPIKey() bool
}

// CheckStatus grades a single probe or the whole report.
type CheckStatus string

const (
	StatusOK       CheckStatus = "ok"
	StatusDegraded CheckStatus = "degraded"
	StatusError    CheckStatus = "error"
)

// severity orders statuses so the report can keep the worst one.
func (s CheckStatus) severity() int {
	switch s {
	case StatusError:
		return 2
	case StatusDegraded:
		return 1
	default:
		return 0
	}
}

func worse(a, b CheckStatus) CheckStatus {
	if b.severity() > a.severity() {
		return b
	}
	return a
}

// CheckDetail is the outcome of one probe.
type CheckDetail struct {
	Status  CheckStatus `json:"status"`
	Message string      `json:"message,omitempty"`
}

// HealthResponse is the JSON body served at /health.
type HealthResponse struct {
	Status    CheckStatus            `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckDetail `json:"checks"`
	Uptime    string                 `json:"uptime,omitempty"`
}

var startTime = time.Now()

// Checker runs the individual probes and remembers the last refresh outcome.
type Checker struct {
	store    Pinger
	sources  CredentialSource
	interval time.Duration

	mu        sync.RWMutex
	lastRun   time.Time
	lastRunOK bool
}

// NewChecker wires the health endpoint's dependencies. A zero interval
// means no refresh daemon is running, which removes the staleness probe.
func NewChecker(store Pinger, sources CredentialSource, interval time.Duration) *Checker {
	return &Checker{
		store:    store,
		sources:  sources,
		interval: interval,
	}
}

// UpdateLastRun records the outcome of a refresh pass.
func (c *Checker) UpdateLastRun(ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastRun = time.Now()
	c.lastRunOK = ok
}

// Check runs every probe and aggregates the worst status.
func (c *Checker) Check(ctx context.Context) HealthResponse {
	checks := map[string]CheckDetail{
		"database":  c.checkDatabase(ctx),
		"providers": c.checkProviders(),
	}
	if c.interval > 0 {
		checks["daemon"] = c.checkDaemon()
	}

	status := StatusOK
	for _, detail := range checks {
		status = worse(status, detail.Status)
	}

	return HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
		Uptime:    time.Since(startTime).Round(time.Second).String(),
	}
}

func (c *Checker) checkDatabase(ctx context.Context) CheckDetail {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.store.Ping(ctx); err != nil {
		slog.Error("Health check: database ping failed", "error", err)
		return CheckDetail{
			Status:  StatusError,
			Message: "postgres unreachable: " + err.Error(),
		}
	}

	return CheckDetail{Status: StatusOK, Message: "database connection healthy"}
}

// checkProviders reads configuration only; fetches without a key return
// empty results rather than failing, which is why a missing key is degraded
// and not an error.
func (c *Checker) checkProviders() CheckDetail {
	if !c.sources.HasAnyAPIKey() {
		return CheckDetail{
			Status:  StatusDegraded,
			Message: "no provider API key configured, fetches return empty results",
		}
	}

	return CheckDetail{Status: StatusOK, Message: "provider credentials configured"}
}

// checkDaemon flags a refresh loop that stopped ticking. The last run may
// be up to twice the interval old before it counts as stalled, so a single
// slow pass does not flap the endpoint.
func (c *Checker) checkDaemon() CheckDetail {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.lastRun.IsZero() {
		// The first tick may still be pending shortly after boot.
		return CheckDetail{Status: StatusOK, Message: "refresh not yet executed (startup)"}
	}

	if !c.lastRunOK {
		return CheckDetail{Status: StatusDegraded, Message: "last refresh failed"}
	}

	age := time.Since(c.lastRun)
	if age > 2*c.interval {
		return CheckDetail{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("no refresh in %s (expected every %s)", age.Round(time.Second), c.interval),
		}
	}

	return CheckDetail{
		Status:  StatusOK,
		Message: fmt.Sprintf("last refreshed %s ago", age.Round(time.Second)),
	}
}

// Handler serves the aggregated report. Degraded conditions still answer
// 200 so load balancers only evict on hard failures.
func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		report := c.Check(r.Context())

		code := http.StatusOK
		if report.Status == StatusError {
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)

		if err := json.NewEncoder(w).Encode(report); err != nil {
			slog.Error("Failed to encode health response", "error", err)
		}
	}
}
