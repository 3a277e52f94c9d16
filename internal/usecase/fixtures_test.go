package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"nutriflow/internal/adapter/repository"
	"nutriflow/internal/domain/docstore"
	"nutriflow/internal/infrastructure/memstore"
	"nutriflow/internal/infrastructure/ratelimit"
)

var testNow = time.Date(2024, 3, 15, 13, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// faultyStore fails merge writes on one document path and adds to one
// collection, leaving everything else to the wrapped store.
type faultyStore struct {
	*memstore.Store

	mu            sync.Mutex
	failMergeOn   string
	failAddTo     string
	mergeAttempts int
}

func newFaultyStore() *faultyStore {
	return &faultyStore{Store: memstore.New()}
}

func (f *faultyStore) Write(ctx context.Context, path string, fields map[string]interface{}, mode docstore.WriteMode) error {
	f.mu.Lock()
	fail := mode == docstore.Merge && path == f.failMergeOn
	if mode == docstore.Merge {
		f.mergeAttempts++
	}
	f.mu.Unlock()
	if fail {
		return fmt.Errorf("write to %s rejected", path)
	}
	return f.Store.Write(ctx, path, fields, mode)
}

func (f *faultyStore) Add(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	f.mu.Lock()
	fail := collection == f.failAddTo
	f.mu.Unlock()
	if fail {
		return "", fmt.Errorf("add to %s rejected", collection)
	}
	return f.Store.Add(ctx, collection, fields)
}

func (f *faultyStore) set(failMergeOn, failAddTo string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failMergeOn = failMergeOn
	f.failAddTo = failAddTo
	f.mergeAttempts = 0
}

func (f *faultyStore) merges() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mergeAttempts
}

type chatFixture struct {
	store *faultyStore
	sync  *Synchronizer
	chats *ChatUseCase
	limit *ratelimit.RateLimiter
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	store := newFaultyStore()
	chatRepo := repository.NewDocumentChatRepository(store)
	sync := NewSynchronizer(store, chatRepo)
	limiter := ratelimit.NewRateLimiter(60)
	return &chatFixture{
		store: store,
		sync:  sync,
		chats: NewChatUseCase(chatRepo, sync, limiter).WithClock(fixedClock(testNow)),
		limit: limiter,
	}
}

type clinic struct {
	store        *memstore.Store
	patients     *PatientUseCase
	appointments *AppointmentUseCase
	plans        *DietPlanUseCase
	financial    *FinancialUseCase
	dashboard    *DashboardUseCase
}

func newClinic(now time.Time) *clinic {
	return newClinicOn(memstore.New(), now)
}

// newClinicOn builds the use cases over store with the clock pinned to now.
func newClinicOn(store *memstore.Store, now time.Time) *clinic {
	patientRepo := repository.NewDocumentPatientRepository(store)

	c := &clinic{
		store:        store,
		patients:     NewPatientUseCase(patientRepo),
		appointments: NewAppointmentUseCase(repository.NewDocumentAppointmentRepository(store), patientRepo),
		plans:        NewDietPlanUseCase(repository.NewDocumentDietPlanRepository(store)),
		financial:    NewFinancialUseCase(repository.NewDocumentFinancialRepository(store), patientRepo),
	}
	c.dashboard = NewDashboardUseCase(patientRepo, c.appointments, c.financial)

	clock := fixedClock(now)
	c.patients.now = clock
	c.appointments.now = clock
	c.plans.now = clock
	c.financial.now = clock
	c.financial.loc = time.UTC
	c.dashboard.now = clock
	return c
}
