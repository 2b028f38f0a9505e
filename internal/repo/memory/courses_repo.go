package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/coursehub/internal/domain/course"
	"github.com/geocoder89/coursehub/internal/domain/user"
)

// CoursesRepo is an in-process course store. Owners are resolved through the
// users repo it was built with.
type CoursesRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]course.Course
	users  *UsersRepo
}

func NewCoursesRepo(users *UsersRepo) *CoursesRepo {
	return &CoursesRepo{
		items: make(map[int64]course.Course),
		users: users,
	}
}

func (r *CoursesRepo) Create(_ context.Context, c course.Course) (course.Course, error) {
	if _, ok := r.users.profile(c.OwnerID); !ok {
		return course.Course{}, fmt.Errorf("create course: owner %d: %w", c.OwnerID, user.ErrNotFound)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	c.ID = r.nextID

	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	r.items[c.ID] = c

	return c, nil
}

func (r *CoursesRepo) GetByID(_ context.Context, id int64) (course.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[id]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}

	return c, nil
}

func (r *CoursesRepo) GetWithOwner(ctx context.Context, id int64) (course.WithOwner, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return course.WithOwner{}, err
	}

	owner, _ := r.users.profile(c.OwnerID)

	return course.WithOwner{Course: c, Owner: owner}, nil
}

func (r *CoursesRepo) List(_ context.Context) ([]course.WithOwner, error) {
	r.mu.RLock()
	out := make([]course.WithOwner, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, course.WithOwner{Course: c})
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	for i := range out {
		out[i].Owner, _ = r.users.profile(out[i].OwnerID)
	}

	return out, nil
}

func (r *CoursesRepo) Update(_ context.Context, id int64, req course.UpdateCourseRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.items[id]
	if !ok {
		return course.ErrNotFound
	}

	c.Apply(req)
	r.items[id] = c

	return nil
}

func (r *CoursesRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return course.ErrNotFound
	}

	delete(r.items, id)

	return nil
}
