// Package health reports whether the discovery engine can serve queries.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the embedding provider is down; the offline
	// embedder keeps search available.
	Degraded Status = "degraded"
	// Unhealthy indicates the index store is unreachable and queries
	// cannot be served.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component check names as they appear in the report.
const (
	CheckIndexStore        = "index_store"
	CheckEmbeddingProvider = "embedding_provider"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store    StorePinger
	provider ProviderChecker
}

// New creates a Service. provider can be nil.
func New(store StorePinger, provider ProviderChecker) *Service {
	return &Service{store: store, provider: provider}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.store.Ping(ctx); err != nil {
		checks[CheckIndexStore] = CheckError
	} else {
		checks[CheckIndexStore] = CheckOK
	}

	if s.provider != nil {
		if err := s.provider.HealthCheck(ctx); err != nil {
			checks[CheckEmbeddingProvider] = CheckError
		} else {
			checks[CheckEmbeddingProvider] = CheckOK
		}
	}

	status := Healthy
	switch {
	case checks[CheckIndexStore] == CheckError:
		status = Unhealthy
	case checks[CheckEmbeddingProvider] == CheckError:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
