package harvest

// Store holds every captured record keyed by identity, merging duplicates as
// they arrive. It is not safe for concurrent use; the orchestrator is its
// single writer.
type Store struct {
	index   map[IdentityKey]int
	records []ProfileRecord
}

// NewStore returns an empty identity store.
func NewStore() *Store {
	return &Store{index: make(map[IdentityKey]int)}
}

// Load seeds the store from a checkpoint snapshot, preserving order and
// re-merging any duplicates the snapshot may carry.
func (s *Store) Load(records []ProfileRecord) {
	for _, rec := range records {
		s.Upsert(rec)
	}
}

// Upsert inserts the record or merges it into the existing record sharing its
// identity key. The merge is field-by-field: an empty field is filled by the
// incoming value, a populated field is kept. First write wins per field, so
// detail from an earlier partial extraction survives while gaps still close.
func (s *Store) Upsert(rec ProfileRecord) {
	key := rec.Key()
	if i, ok := s.index[key]; ok {
		merge(&s.records[i], rec)
		return
	}
	s.index[key] = len(s.records)
	s.records = append(s.records, rec)
}

func merge(dst *ProfileRecord, src ProfileRecord) {
	fillEmpty(&dst.Name, src.Name)
	fillEmpty(&dst.LinkedIn, src.LinkedIn)
	fillEmpty(&dst.CompanyName, src.CompanyName)
	fillEmpty(&dst.CompanyPage, src.CompanyPage)
	fillEmpty(&dst.Website, src.Website)
	fillEmpty(&dst.Batch, src.Batch)
	fillEmpty(&dst.Location, src.Location)
	fillEmpty(&dst.SourceURL, src.SourceURL)
	if dst.DiscoveredAt.IsZero() {
		dst.DiscoveredAt = src.DiscoveredAt
	}
}

func fillEmpty(dst *string, src string) {
	if *dst == "" {
		*dst = src
	}
}

// Get returns the current record for key, if any.
func (s *Store) Get(key IdentityKey) (ProfileRecord, bool) {
	i, ok := s.index[key]
	if !ok {
		return ProfileRecord{}, false
	}
	return s.records[i], true
}

// Len reports the number of distinct identities held.
func (s *Store) Len() int {
	return len(s.records)
}

// Snapshot returns all records in insertion order. The slice is a copy;
// callers may hold it across further upserts.
func (s *Store) Snapshot() []ProfileRecord {
	out := make([]ProfileRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Rows renders the snapshot as pre-stringified cells in RecordHeader order.
func (s *Store) Rows() [][]string {
	rows := make([][]string, 0, len(s.records))
	for _, rec := range s.records {
		rows = append(rows, rec.Row())
	}
	return rows
}
