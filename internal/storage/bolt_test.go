package storage

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"
)

func setupTestStorage(t *testing.T) *BoltStore {
	t.Helper()
	store := NewBoltStore(&BoltOptions{Path: filepath.Join(t.TempDir(), "history", "test.db")})
	if err := store.Open(); err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func stores(t *testing.T) map[string]DeploymentStore {
	return map[string]DeploymentStore{
		"bolt":   setupTestStorage(t),
		"memory": NewMemoryStore(),
	}
}

func createTestRecord(name string, action Action, at time.Time) *DeploymentRecord {
	return &DeploymentRecord{
		Name:        name,
		ProcessorID: "greenbox",
		PipelineID:  "weather",
		Kind:        "dsh-service",
		Action:      action,
		Descriptor:  json.RawMessage(`{"image":"registry/greenbox:1"}`),
		Time:        at,
	}
}

func TestRecordAndGet(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			record := createTestRecord("weather-greenbox", ActionDeploy, time.Time{})
			if err := store.Record(ctx, record); err != nil {
				t.Fatalf("Record() error = %v", err)
			}
			if record.ID == "" {
				t.Fatal("Record() did not assign an id")
			}
			if record.Time.IsZero() {
				t.Fatal("Record() did not assign a time")
			}

			got, err := store.Get(ctx, record.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.Name != record.Name || got.Action != ActionDeploy {
				t.Errorf("Get() = %+v, want %+v", got, record)
			}
			if string(got.Descriptor) != `{"image":"registry/greenbox:1"}` {
				t.Errorf("Get().Descriptor = %s", got.Descriptor)
			}
			if !got.Succeeded() {
				t.Error("Succeeded() = false, want true")
			}

			_, err = store.Get(ctx, "missing")
			if !IsNotFound(err) {
				t.Errorf("Get(missing) error = %v, want not found", err)
			}
		})
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			records := []*DeploymentRecord{
				createTestRecord("weather-greenbox", ActionDeploy, base),
				createTestRecord("weather-eavesdropper", ActionDeploy, base.Add(time.Minute)),
				createTestRecord("weather-greenbox", ActionUndeploy, base.Add(2*time.Minute)),
				createTestRecord("weather-greenbox", ActionDeploy, base.Add(3*time.Minute)),
			}
			records[2].Error = "not authorized"
			for _, r := range records {
				if err := store.Record(ctx, r); err != nil {
					t.Fatalf("Record() error = %v", err)
				}
			}

			tests := []struct {
				name   string
				filter string
				limit  int
				want   []string
			}{
				{name: "all", want: []string{"weather-greenbox", "weather-greenbox", "weather-eavesdropper", "weather-greenbox"}},
				{name: "limited", limit: 2, want: []string{"weather-greenbox", "weather-greenbox"}},
				{name: "by name", filter: "weather-eavesdropper", want: []string{"weather-eavesdropper"}},
				{name: "prefix is not a match", filter: "weather", want: nil},
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					got, err := store.List(ctx, tt.filter, tt.limit)
					if err != nil {
						t.Fatalf("List() error = %v", err)
					}
					if len(got) != len(tt.want) {
						t.Fatalf("List() returned %d records, want %d", len(got), len(tt.want))
					}
					for i := range got {
						if got[i].Name != tt.want[i] {
							t.Errorf("List()[%d].Name = %s, want %s", i, got[i].Name, tt.want[i])
						}
						if i > 0 && got[i].Time.After(got[i-1].Time) {
							t.Errorf("List() not ordered newest first at %d", i)
						}
					}
				})
			}

			greenbox, _ := store.List(ctx, "weather-greenbox", 0)
			if greenbox[1].Succeeded() {
				t.Errorf("record with error reported as succeeded")
			}
		})
	}
}

func TestBoltStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	store := NewBoltStore(&BoltOptions{Path: path})
	if err := store.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	record := createTestRecord("weather-greenbox", ActionDeploy, time.Now())
	if err := store.Record(ctx, record); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened := NewBoltStore(&BoltOptions{Path: path})
	if err := reopened.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.Time.Equal(record.Time) {
		t.Errorf("Get().Time = %v, want %v", got.Time, record.Time)
	}
}

func TestBoltStoreWithoutPath(t *testing.T) {
	if err := NewBoltStore(nil).Open(); err == nil {
		t.Error("Open() without path succeeded")
	}
}
