package library

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"
)

// Library is the in-memory registry with JSON persistence. All mutations are
// serialized; readers observe a consistent snapshot.
type Library struct {
	mu        sync.RWMutex
	projectID string
	assets    map[string]*AssetRecord
	counters  map[AssetType]int
	createdAt time.Time
	updatedAt time.Time
}

// New creates an empty library for a project.
func New(projectID string) *Library {
	now := time.Now().UTC()
	return &Library{
		projectID: projectID,
		assets:    make(map[string]*AssetRecord),
		counters:  make(map[AssetType]int),
		createdAt: now,
		updatedAt: now,
	}
}

// ProjectID returns the owning project.
func (l *Library) ProjectID() string { return l.projectID }

// Register stores a record, assigning a type-scoped ID when empty and
// stamping generated_at. New records default to draft status.
func (l *Library) Register(rec *AssetRecord) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("nil asset record")
	}
	prefix, ok := idPrefixes[rec.Type]
	if !ok {
		return "", fmt.Errorf("unknown asset type %q", rec.Type)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if rec.AssetID == "" {
		l.counters[rec.Type]++
		rec.AssetID = fmt.Sprintf("%s_%04d", prefix, l.counters[rec.Type])
	} else if _, exists := l.assets[rec.AssetID]; exists {
		return "", fmt.Errorf("asset %q already registered", rec.AssetID)
	}
	if rec.Status == "" {
		rec.Status = StatusDraft
	}
	if rec.GeneratedAt.IsZero() {
		rec.GeneratedAt = time.Now().UTC()
	}

	stored := *rec
	l.assets[rec.AssetID] = &stored
	l.updatedAt = time.Now().UTC()
	return rec.AssetID, nil
}

// Get returns a copy of the record.
func (l *Library) Get(id string) (*AssetRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, ok := l.assets[id]
	if !ok {
		return nil, fmt.Errorf("asset %q not found", id)
	}
	out := *rec
	return &out, nil
}

// Query returns copies of all records matching the filter, ordered by ID.
// A segment_idx filter matches the primary index and used_in_segments
// membership.
func (l *Library) Query(f Filter) []AssetRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []AssetRecord
	for _, rec := range l.assets {
		if matches(rec, f) {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssetID < out[j].AssetID })
	return out
}

func matches(rec *AssetRecord, f Filter) bool {
	if f.Type != "" && rec.Type != f.Type {
		return false
	}
	if f.Status != "" && rec.Status != f.Status {
		return false
	}
	if f.Source != "" && rec.Source != f.Source {
		return false
	}
	if f.SegmentIdx != nil && !segmentMatch(rec, *f.SegmentIdx) {
		return false
	}
	if f.FigureNumber != nil && (rec.FigureNumber == nil || *rec.FigureNumber != *f.FigureNumber) {
		return false
	}
	for _, want := range f.Tags {
		found := false
		for _, tag := range rec.Tags {
			if tag == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func segmentMatch(rec *AssetRecord, idx int) bool {
	if rec.SegmentIdx != nil && *rec.SegmentIdx == idx {
		return true
	}
	for _, used := range rec.UsedInSegments {
		if used == idx {
			return true
		}
	}
	return false
}

// Approve transitions a record to approved and stamps the timestamp.
// Approving an already-approved record is a no-op (idempotent).
func (l *Library) Approve(id, by string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.assets[id]
	if !ok {
		return fmt.Errorf("asset %q not found", id)
	}
	if rec.Status == StatusApproved {
		return nil
	}
	now := time.Now().UTC()
	rec.Status = StatusApproved
	rec.ApprovedAt = &now
	rec.ApprovedBy = by
	l.updatedAt = now
	return nil
}

// Reject transitions a record to rejected with a reason.
func (l *Library) Reject(id, reason string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.assets[id]
	if !ok {
		return fmt.Errorf("asset %q not found", id)
	}
	rec.Status = StatusRejected
	rec.RejectedReason = reason
	l.updatedAt = time.Now().UTC()
	return nil
}

// FlagForReview moves a draft record into review.
func (l *Library) FlagForReview(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.assets[id]
	if !ok {
		return fmt.Errorf("asset %q not found", id)
	}
	rec.Status = StatusReview
	l.updatedAt = time.Now().UTC()
	return nil
}

// HasApprovedAssetFor is the generation-skip predicate.
func (l *Library) HasApprovedAssetFor(segmentIdx int, t AssetType) bool {
	return len(l.Query(Filter{Type: t, Status: StatusApproved, SegmentIdx: Intp(segmentIdx)})) > 0
}

// GetApprovedForSegment returns the first approved asset of a type for a
// segment, by ID order.
func (l *Library) GetApprovedForSegment(segmentIdx int, t AssetType) (*AssetRecord, bool) {
	recs := l.Query(Filter{Type: t, Status: StatusApproved, SegmentIdx: Intp(segmentIdx)})
	if len(recs) == 0 {
		return nil, false
	}
	return &recs[0], true
}

// Counters returns a snapshot of the per-type counters.
func (l *Library) Counters() map[AssetType]int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[AssetType]int, len(l.counters))
	for k, v := range l.counters {
		out[k] = v
	}
	return out
}

// =============================================================================
// JSON PERSISTENCE
// =============================================================================

type libraryJSON struct {
	ProjectID string                  `json:"project_id"`
	Assets    map[string]*AssetRecord `json:"assets"`
	Counters  map[AssetType]int       `json:"counters"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// MarshalJSON serializes the library artifact.
func (l *Library) MarshalJSON() ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return json.MarshalIndent(libraryJSON{
		ProjectID: l.projectID,
		Assets:    l.assets,
		Counters:  l.counters,
		CreatedAt: l.createdAt,
		UpdatedAt: l.updatedAt,
	}, "", "  ")
}

// Save writes the library artifact to path.
func (l *Library) Save(path string) error {
	data, err := l.MarshalJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a library artifact; the round trip with Save is identity.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read library file: %w", err)
	}
	return Unmarshal(data)
}

// Unmarshal decodes a serialized library.
func Unmarshal(data []byte) (*Library, error) {
	var lj libraryJSON
	if err := json.Unmarshal(data, &lj); err != nil {
		return nil, fmt.Errorf("failed to decode content library: %w", err)
	}
	l := &Library{
		projectID: lj.ProjectID,
		assets:    lj.Assets,
		counters:  lj.Counters,
		createdAt: lj.CreatedAt,
		updatedAt: lj.UpdatedAt,
	}
	if l.assets == nil {
		l.assets = make(map[string]*AssetRecord)
	}
	if l.counters == nil {
		l.counters = make(map[AssetType]int)
	}
	return l, nil
}
