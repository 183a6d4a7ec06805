package harvest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStore_Upsert_MergeFirstWriteWins(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Upsert(ProfileRecord{
		Name:     "Jane Doe",
		LinkedIn: "https://linkedin.com/in/janedoe",
		Batch:    "W22",
	})
	s.Upsert(ProfileRecord{
		Name:        "Jane D.",
		LinkedIn:    "https://linkedin.com/in/janedoe",
		CompanyName: "Acme",
		Batch:       "S23",
	})

	require.Equal(t, 1, s.Len())
	got, ok := s.Get(ProfileRecord{LinkedIn: "https://linkedin.com/in/janedoe"}.Key())
	require.True(t, ok)
	require.Equal(t, "Jane Doe", got.Name, "populated field survives")
	require.Equal(t, "W22", got.Batch, "populated field survives")
	require.Equal(t, "Acme", got.CompanyName, "gap closed by later record")
}

func TestStore_Upsert_DistinctIdentities(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Upsert(ProfileRecord{Name: "Jane Doe", CompanyName: "Acme"})
	s.Upsert(ProfileRecord{Name: "John Roe", CompanyName: "Acme"})
	s.Upsert(ProfileRecord{Name: "Jane Doe", CompanyName: "Globex"})
	require.Equal(t, 3, s.Len())
}

func TestStore_Upsert_KeepsEarliestDiscovery(t *testing.T) {
	t.Parallel()

	early := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(24 * time.Hour)

	s := NewStore()
	s.Upsert(ProfileRecord{Name: "Jane", CompanyName: "Acme", DiscoveredAt: early})
	s.Upsert(ProfileRecord{Name: "Jane", CompanyName: "Acme", DiscoveredAt: late})

	got, ok := s.Get(ProfileRecord{Name: "Jane", CompanyName: "Acme"}.Key())
	require.True(t, ok)
	require.Equal(t, early, got.DiscoveredAt)
}

func TestStore_SnapshotPreservesInsertionOrder(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Upsert(ProfileRecord{Name: "B", CompanyName: "Acme"})
	s.Upsert(ProfileRecord{Name: "A", CompanyName: "Acme"})

	snap := s.Snapshot()
	require.Len(t, snap, 2)
	require.Equal(t, "B", snap[0].Name)
	require.Equal(t, "A", snap[1].Name)

	// Mutating the snapshot must not reach the store.
	snap[0].Name = "mutated"
	again := s.Snapshot()
	require.Equal(t, "B", again[0].Name)
}

func TestStore_Load_RemergesDuplicates(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Load([]ProfileRecord{
		{Name: "Jane", CompanyName: "Acme", Batch: "W22"},
		{Name: "Jane", CompanyName: "Acme", Location: "Paris, France"},
	})
	require.Equal(t, 1, s.Len())
	got, _ := s.Get(ProfileRecord{Name: "Jane", CompanyName: "Acme"}.Key())
	require.Equal(t, "W22", got.Batch)
	require.Equal(t, "Paris, France", got.Location)
}

func TestStore_Rows(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Upsert(ProfileRecord{Name: "Jane", CompanyName: "Acme"})
	rows := s.Rows()
	require.Len(t, rows, 1)
	require.Len(t, rows[0], len(RecordHeader))
}
