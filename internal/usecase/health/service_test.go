package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockStorePinger struct {
	err error
}

func (m *mockStorePinger) Ping(_ context.Context) error { return m.err }

type mockProviderChecker struct {
	err error
}

func (m *mockProviderChecker) HealthCheck(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockStorePinger{}, &mockProviderChecker{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks[CheckIndexStore] != CheckOK {
		t.Errorf("expected index store %q, got %q", CheckOK, r.Checks[CheckIndexStore])
	}
	if r.Checks[CheckEmbeddingProvider] != CheckOK {
		t.Errorf("expected provider %q, got %q", CheckOK, r.Checks[CheckEmbeddingProvider])
	}
}

func TestCheck_StoreDownIsUnhealthy(t *testing.T) {
	svc := New(&mockStorePinger{err: errors.New("conn refused")}, &mockProviderChecker{})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks[CheckIndexStore] != CheckError {
		t.Errorf("expected index store %q, got %q", CheckError, r.Checks[CheckIndexStore])
	}
	if r.Checks[CheckEmbeddingProvider] != CheckOK {
		t.Errorf("expected provider %q, got %q", CheckOK, r.Checks[CheckEmbeddingProvider])
	}
}

func TestCheck_ProviderDownIsDegraded(t *testing.T) {
	svc := New(&mockStorePinger{}, &mockProviderChecker{err: errors.New("timeout")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[CheckIndexStore] != CheckOK {
		t.Errorf("expected index store %q, got %q", CheckOK, r.Checks[CheckIndexStore])
	}
	if r.Checks[CheckEmbeddingProvider] != CheckError {
		t.Errorf("expected provider %q, got %q", CheckError, r.Checks[CheckEmbeddingProvider])
	}
}

func TestCheck_BothFail(t *testing.T) {
	svc := New(
		&mockStorePinger{err: errors.New("store down")},
		&mockProviderChecker{err: errors.New("provider down")},
	)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks[CheckIndexStore] != CheckError {
		t.Error("expected index store error")
	}
	if r.Checks[CheckEmbeddingProvider] != CheckError {
		t.Error("expected provider error")
	}
}

func TestCheck_NoProvider(t *testing.T) {
	svc := New(&mockStorePinger{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks[CheckIndexStore] != CheckOK {
		t.Errorf("expected index store %q, got %q", CheckOK, r.Checks[CheckIndexStore])
	}
	if _, ok := r.Checks[CheckEmbeddingProvider]; ok {
		t.Error("provider check should be absent when provider is nil")
	}
}

func TestCheck_NoProvider_StoreDown(t *testing.T) {
	svc := New(&mockStorePinger{err: errors.New("fail")}, nil)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks[CheckIndexStore] != CheckError {
		t.Error("expected index store error")
	}
	if _, ok := r.Checks[CheckEmbeddingProvider]; ok {
		t.Error("provider check should be absent when provider is nil")
	}
}
