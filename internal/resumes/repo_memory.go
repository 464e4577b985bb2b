package resumes

import (
	"context"
	"sort"
	"sync"
	"time"

	"resume-generator/internal/users"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	nextID  int64
	records map[int64]Record
	unlocks map[int64]string
	now     func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		records: make(map[int64]Record),
		unlocks: make(map[int64]string),
		now:     time.Now,
	}
}

func (r *MemoryRepo) Create(ctx context.Context, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	rec.ID = r.nextID
	rec.CreatedAt = r.now().UTC()
	rec.Structured = rec.Structured.Normalize()
	r.records[rec.ID] = rec
	return rec, nil
}

func (r *MemoryRepo) GetForOwner(ctx context.Context, ownerID, id int64) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok || rec.OwnerID != ownerID {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (r *MemoryRepo) ListForOwner(ctx context.Context, ownerID int64) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Record{}
	for _, rec := range r.records {
		if rec.OwnerID == ownerID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) Unlock(ctx context.Context, id int64, reference string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return ErrNotFound
	}
	if _, ok := r.unlocks[id]; !ok {
		r.unlocks[id] = reference
	}
	return nil
}

func (r *MemoryRepo) IsUnlocked(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.unlocks[id]
	return ok, nil
}

// MemoryTxRunner runs fn directly against the in-memory repositories.
// There is no rollback; it backs local development only.
type MemoryTxRunner struct {
	Users   *users.MemoryRepo
	Resumes *MemoryRepo
}

func (m MemoryTxRunner) InTx(ctx context.Context, fn func(ctx context.Context, u users.Repo, r Repo) error) error {
	return fn(ctx, m.Users, m.Resumes)
}
