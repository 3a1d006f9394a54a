package cache

import (
	"sync"
	"testing"
	"time"

	"roster/internal/registry"
)

func TestStoreLookupAfterInstall(t *testing.T) {
	store := NewStore(nil)
	if !store.Empty() {
		t.Fatal("expected new store to be empty")
	}
	if _, ok := store.Lookup("REG-1"); ok {
		t.Fatal("expected miss on empty store")
	}

	snap := registry.NewSnapshot([]registry.Record{
		{RegistrationNumber: "REG-1", CompanyName: "Acme"},
	}, time.Now())
	store.Install(snap)

	rec, ok := store.Lookup("  reg-1  ")
	if !ok {
		t.Fatal("expected hit after install")
	}
	if rec.CompanyName != "Acme" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", store.Len())
	}
	if store.Empty() {
		t.Error("expected store to be non-empty")
	}
}

func TestStoreInstallReplacesSnapshot(t *testing.T) {
	store := NewStore(nil)
	store.Install(registry.NewSnapshot([]registry.Record{
		{RegistrationNumber: "OLD-1"},
	}, time.Now().Add(-time.Hour)))
	store.Install(registry.NewSnapshot([]registry.Record{
		{RegistrationNumber: "NEW-1"},
	}, time.Now()))

	if _, ok := store.Lookup("OLD-1"); ok {
		t.Error("expected old snapshot to be fully replaced")
	}
	if _, ok := store.Lookup("NEW-1"); !ok {
		t.Error("expected new snapshot entry")
	}
}

func TestStoreAgeAndLastUpdate(t *testing.T) {
	store := NewStore(nil)
	if !store.LastUpdate().IsZero() {
		t.Error("expected zero last update before first install")
	}
	if store.Age() != 0 {
		t.Errorf("expected zero age before first install, got %v", store.Age())
	}

	fetched := time.Now().Add(-30 * time.Minute)
	store.Install(registry.NewSnapshot(nil, fetched))
	if !store.LastUpdate().Equal(fetched) {
		t.Errorf("unexpected last update: %v", store.LastUpdate())
	}
	if age := store.Age(); age < 29*time.Minute || age > 31*time.Minute {
		t.Errorf("unexpected age: %v", age)
	}
}

func TestStoreLoadingSlotIsExclusive(t *testing.T) {
	store := NewStore(nil)
	if store.Loading() {
		t.Fatal("expected no refresh in flight initially")
	}
	if !store.BeginLoading() {
		t.Fatal("expected to claim refresh slot")
	}
	if store.BeginLoading() {
		t.Fatal("expected second claim to fail while slot held")
	}
	if !store.Loading() {
		t.Fatal("expected loading flag while slot held")
	}
	store.EndLoading()
	if store.Loading() {
		t.Fatal("expected loading flag cleared")
	}
	if !store.BeginLoading() {
		t.Fatal("expected slot to be claimable again")
	}
	store.EndLoading()
}

func TestStoreConcurrentLookupsDuringInstall(t *testing.T) {
	store := NewStore(nil)
	store.Install(registry.NewSnapshot([]registry.Record{
		{RegistrationNumber: "REG-1", CompanyName: "Acme"},
	}, time.Now()))

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				if rec, ok := store.Lookup("REG-1"); ok && rec.CompanyName == "" {
					t.Error("lookup observed partial record")
					return
				}
			}
		}()
	}

	for i := 0; i < 100; i++ {
		store.Install(registry.NewSnapshot([]registry.Record{
			{RegistrationNumber: "REG-1", CompanyName: "Acme"},
		}, time.Now()))
	}
	close(stop)
	wg.Wait()
}
