// Package store persists detection runs.
//
// A run is kept as one run document plus one document per (sample,
// chromosome) record, so clusters of a single sample can be queried across
// runs. [MongoStore] is the production backend; [MemoryStore] backs tests
// and servers started without a database.
package store

import (
	"context"
	"slices"
	"sync"

	hcerrors "github.com/matzehuels/hicluster/pkg/errors"
	"github.com/matzehuels/hicluster/pkg/pipeline"
)

// Store persists detection runs.
type Store interface {
	// SaveRun stores res under res.RunID.
	SaveRun(ctx context.Context, res *pipeline.Result) error
	// Run returns a stored run with its records in stored order.
	Run(ctx context.Context, runID string) (*pipeline.Result, error)
	// SampleClusters returns every stored record of sample, newest run first.
	SampleClusters(ctx context.Context, sample string) ([]StoredRecord, error)
	Close(ctx context.Context) error
}

// StoredRecord is a record together with the run it belongs to.
type StoredRecord struct {
	RunID           string `json:"run_id" bson:"run_id"`
	pipeline.Record `bson:",inline"`
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu   sync.RWMutex
	runs []*pipeline.Result
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// SaveRun implements [Store].
func (s *MemoryStore) SaveRun(_ context.Context, res *pipeline.Result) error {
	if res.RunID == "" {
		return hcerrors.New(hcerrors.ErrCodeInvalidInput, "run id cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *res
	cp.Records = slices.Clone(res.Records)
	s.runs = append(s.runs, &cp)
	return nil
}

// Run implements [Store].
func (s *MemoryStore) Run(_ context.Context, runID string) (*pipeline.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.runs {
		if r.RunID == runID {
			cp := *r
			cp.Records = slices.Clone(r.Records)
			return &cp, nil
		}
	}
	return nil, hcerrors.New(hcerrors.ErrCodeRunNotFound, "run %q not found", runID)
}

// SampleClusters implements [Store].
func (s *MemoryStore) SampleClusters(_ context.Context, sample string) ([]StoredRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []StoredRecord
	for i := len(s.runs) - 1; i >= 0; i-- {
		for _, rec := range s.runs[i].Records {
			if rec.SampleID == sample {
				out = append(out, StoredRecord{RunID: s.runs[i].RunID, Record: rec})
			}
		}
	}
	return out, nil
}

// Close implements [Store].
func (s *MemoryStore) Close(context.Context) error { return nil }
