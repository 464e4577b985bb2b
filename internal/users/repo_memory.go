package users

import (
	"context"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	nextID  int64
	byEmail map[string]User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byEmail: make(map[string]User)}
}

func (r *MemoryRepo) GetOrCreate(ctx context.Context, email, displayName string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	email = NormalizeEmail(email)
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.byEmail[email]; ok {
		return user, nil
	}
	r.nextID++
	user := User{
		ID:          r.nextID,
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   time.Now().UTC(),
	}
	r.byEmail[email] = user
	return user, nil
}

func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byEmail[NormalizeEmail(email)]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}
