package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/coursehub/internal/domain/user"
)

// UsersRepo is an in-process user store. Email matching is exact, like the
// default collation of the postgres column.
type UsersRepo struct {
	mu      sync.RWMutex
	nextID  int64
	items   map[int64]user.User
	byEmail map[string]int64
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items:   make(map[int64]user.User),
		byEmail: make(map[string]int64),
	}
}

func (r *UsersRepo) FindByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return r.items[id], nil
}

func (r *UsersRepo) GetByID(_ context.Context, id int64) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) Create(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[u.EmailAddress]; taken {
		return user.User{}, user.ErrEmailTaken
	}

	r.nextID++
	u.ID = r.nextID

	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	r.items[u.ID] = u
	r.byEmail[u.EmailAddress] = u.ID

	return u, nil
}

func (r *UsersRepo) profile(id int64) (user.Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]

	return u.Profile(), ok
}
