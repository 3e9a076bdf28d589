package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/schoolregistry/server/internal/model"
)

// In-memory repo implementations mirroring the Postgres semantics, for
// tests that don't need a database.

// MemoryOtpRepo is an in-memory OtpRepo. Now is overridable so tests can
// pin the clock.
type MemoryOtpRepo struct {
	mu      sync.Mutex
	seq     int64
	records []model.OtpVerification

	Now func() time.Time
}

// NewMemoryOtpRepo creates an empty in-memory OtpRepo.
func NewMemoryOtpRepo() *MemoryOtpRepo {
	return &MemoryOtpRepo{Now: time.Now}
}

func (r *MemoryOtpRepo) Create(ctx context.Context, email, code string, expiresAt time.Time) (model.OtpVerification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	rec := model.OtpVerification{
		ID:        r.seq,
		Email:     email,
		Code:      code,
		CreatedAt: r.Now(),
		ExpiresAt: expiresAt,
	}
	r.records = append(r.records, rec)
	return rec, nil
}

func (r *MemoryOtpRepo) DeleteExpired(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.Now()
	kept := r.records[:0]
	for _, rec := range r.records {
		if rec.Email == email && rec.ExpiresAt.Before(now) {
			continue
		}
		kept = append(kept, rec)
	}
	r.records = kept
	return nil
}

func (r *MemoryOtpRepo) Consume(ctx context.Context, email, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.Now()

	// Most recent match wins, mirroring the SQL ORDER BY created_at DESC.
	candidates := make([]int, 0, len(r.records))
	for i, rec := range r.records {
		if rec.Email == email && rec.Code == code && !rec.Consumed && rec.ExpiresAt.After(now) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return ErrNoMatchingCode
	}
	sort.Slice(candidates, func(a, b int) bool {
		ra, rb := r.records[candidates[a]], r.records[candidates[b]]
		if ra.CreatedAt.Equal(rb.CreatedAt) {
			return ra.ID > rb.ID
		}
		return ra.CreatedAt.After(rb.CreatedAt)
	})

	winner := candidates[0]
	r.records[winner].Consumed = true

	winnerID := r.records[winner].ID
	kept := r.records[:0]
	for _, rec := range r.records {
		if rec.Email == email && rec.ID != winnerID {
			continue
		}
		kept = append(kept, rec)
	}
	r.records = kept
	return nil
}

func (r *MemoryOtpRepo) CountUnconsumed(ctx context.Context, email string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, rec := range r.records {
		if rec.Email == email && !rec.Consumed {
			count++
		}
	}
	return count, nil
}

// MemoryUserRepo is an in-memory UserRepo.
type MemoryUserRepo struct {
	mu    sync.Mutex
	seq   int64
	users map[string]model.AuthenticatedUser

	Now func() time.Time
}

// NewMemoryUserRepo creates an empty in-memory UserRepo.
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		users: make(map[string]model.AuthenticatedUser),
		Now:   time.Now,
	}
}

func (r *MemoryUserRepo) Upsert(ctx context.Context, email string) (model.AuthenticatedUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[email]
	if !ok {
		r.seq++
		user = model.AuthenticatedUser{ID: r.seq, Email: email}
	}
	user.LastLogin = r.Now()
	r.users[email] = user
	return user, nil
}

func (r *MemoryUserRepo) GetByEmail(ctx context.Context, email string) (model.AuthenticatedUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[email]
	if !ok {
		return model.AuthenticatedUser{}, ErrNotFound
	}
	return user, nil
}

// MemorySchoolRepo is an in-memory SchoolRepo.
type MemorySchoolRepo struct {
	mu      sync.Mutex
	seq     int64
	schools []model.School
}

// NewMemorySchoolRepo creates an empty in-memory SchoolRepo.
func NewMemorySchoolRepo() *MemorySchoolRepo {
	return &MemorySchoolRepo{}
}

func (r *MemorySchoolRepo) List(ctx context.Context) ([]model.School, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.School, len(r.schools))
	copy(out, r.schools)
	sort.Slice(out, func(a, b int) bool { return out[a].ID > out[b].ID })
	return out, nil
}

func (r *MemorySchoolRepo) Create(ctx context.Context, school model.School) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	school.ID = r.seq
	r.schools = append(r.schools, school)
	return school.ID, nil
}

func (r *MemorySchoolRepo) GetByID(ctx context.Context, id int64) (model.School, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.schools {
		if s.ID == id {
			return s, nil
		}
	}
	return model.School{}, ErrNotFound
}

func (r *MemorySchoolRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.schools {
		if s.ID == id {
			r.schools = append(r.schools[:i], r.schools[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
