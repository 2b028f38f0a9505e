package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/geocoder89/coursehub/internal/domain/course"
	"github.com/geocoder89/coursehub/internal/domain/user"
	"github.com/geocoder89/coursehub/internal/repo/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersRepo_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	r := memory.NewUsersRepo()

	u, err := r.Create(ctx, user.User{FirstName: "A", LastName: "B", EmailAddress: "a@b.com", PasswordHash: "h"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)

	got, err := r.FindByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = r.FindByEmail(ctx, "A@B.COM")
	assert.ErrorIs(t, err, user.ErrNotFound)

	_, err = r.Create(ctx, user.User{EmailAddress: "a@b.com"})
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	_, err = r.GetByID(ctx, 99)
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestUsersRepo_ConcurrentDuplicateCreate(t *testing.T) {
	ctx := context.Background()
	r := memory.NewUsersRepo()

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Create(ctx, user.User{EmailAddress: "same@b.com"}); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
}

func TestCoursesRepo_Lifecycle(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUsersRepo()
	courses := memory.NewCoursesRepo(users)

	owner, err := users.Create(ctx, user.User{FirstName: "A", LastName: "B", EmailAddress: "a@b.com", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = courses.Create(ctx, course.Course{Title: "T", Description: "D", OwnerID: 42})
	assert.ErrorIs(t, err, user.ErrNotFound)

	c, err := courses.Create(ctx, course.Course{Title: "T", Description: "D", OwnerID: owner.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)

	withOwner, err := courses.GetWithOwner(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.Profile(), withOwner.Owner)

	require.NoError(t, courses.Update(ctx, c.ID, course.UpdateCourseRequest{Title: "T2", Description: "D2"}))

	got, err := courses.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "T2", got.Title)
	assert.Equal(t, owner.ID, got.OwnerID)

	list, err := courses.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a@b.com", list[0].Owner.EmailAddress)

	require.NoError(t, courses.Delete(ctx, c.ID))
	assert.ErrorIs(t, courses.Delete(ctx, c.ID), course.ErrNotFound)
	assert.ErrorIs(t, courses.Update(ctx, c.ID, course.UpdateCourseRequest{Title: "x", Description: "y"}), course.ErrNotFound)

	_, err = courses.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, course.ErrNotFound)
}
