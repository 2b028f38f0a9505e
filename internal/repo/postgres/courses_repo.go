package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/coursehub/internal/domain/course"
	"github.com/geocoder89/coursehub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CoursesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

// constructor function

func NewCoursesRepo(pool *pgxpool.Pool, prom *observability.Prom) *CoursesRepo {
	return &CoursesRepo{
		pool: pool,
		prom: prom,
	}
}

const selectWithOwner = `SELECT c.id,
	c.title,
	c.description,
	c.estimated_time,
	c.materials_needed,
	c.user_id,
	c.created_at,
	c.updated_at,
	u.id,
	u.first_name,
	u.last_name,
	u.email_address
FROM courses c
JOIN users u ON u.id = c.user_id
`

func scanWithOwner(row pgx.Row, c *course.WithOwner) error {
	return row.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.EstimatedTime,
		&c.MaterialsNeeded,
		&c.OwnerID,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.Owner.ID,
		&c.Owner.FirstName,
		&c.Owner.LastName,
		&c.Owner.EmailAddress,
	)
}

func (r *CoursesRepo) Create(ctx context.Context, c course.Course) (course.Course, error) {
	err := r.prom.ObserveDB("courses.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO courses (title, description, estimated_time, materials_needed, user_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)
			RETURNING id, created_at, updated_at`,
			c.Title, c.Description, c.EstimatedTime, c.MaterialsNeeded, c.OwnerID, c.CreatedAt,
		).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	})

	if err != nil {
		return course.Course{}, err
	}

	return c, nil
}

func (r *CoursesRepo) GetByID(ctx context.Context, id int64) (course.Course, error) {
	var c course.Course

	err := r.prom.ObserveDB("courses.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, title, description, estimated_time, materials_needed, user_id, created_at, updated_at
			FROM courses WHERE id = $1`,
			id,
		).Scan(&c.ID, &c.Title, &c.Description, &c.EstimatedTime, &c.MaterialsNeeded, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, err
	}

	return c, nil
}

func (r *CoursesRepo) GetWithOwner(ctx context.Context, id int64) (course.WithOwner, error) {
	var c course.WithOwner

	err := r.prom.ObserveDB("courses.get_with_owner", func() error {
		return scanWithOwner(r.pool.QueryRow(ctx, selectWithOwner+`WHERE c.id = $1`, id), &c)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return course.WithOwner{}, course.ErrNotFound
		}
		return course.WithOwner{}, err
	}

	return c, nil
}

func (r *CoursesRepo) List(ctx context.Context) ([]course.WithOwner, error) {
	output := make([]course.WithOwner, 0)

	err := r.prom.ObserveDB("courses.list", func() error {
		rows, err := r.pool.Query(ctx, selectWithOwner+`ORDER BY c.id ASC`)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var c course.WithOwner

			err = scanWithOwner(rows, &c)

			if err != nil {
				return err
			}

			output = append(output, c)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

// Update rewrites title and description; optional fields keep their value when nil.
func (r *CoursesRepo) Update(ctx context.Context, id int64, req course.UpdateCourseRequest) error {
	var affected int64

	err := r.prom.ObserveDB("courses.update", func() error {
		res, err := r.pool.Exec(
			ctx,
			`UPDATE courses
				SET title = $2,
					description = $3,
					estimated_time = COALESCE($4, estimated_time),
					materials_needed = COALESCE($5, materials_needed),
					updated_at = NOW()
			WHERE id = $1`,
			id,
			req.Title,
			req.Description,
			req.EstimatedTime,
			req.MaterialsNeeded,
		)
		affected = res.RowsAffected()
		return err
	})

	if err != nil {
		return err
	}

	// if there are no rows matching the id
	if affected == 0 {
		return course.ErrNotFound
	}

	return nil
}

func (r *CoursesRepo) Delete(ctx context.Context, id int64) error {
	var affected int64

	err := r.prom.ObserveDB("courses.delete", func() error {
		res, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
		affected = res.RowsAffected()
		return err
	})

	if err != nil {
		return err
	}

	// if no rows were deleted as a result return a not found error
	if affected == 0 {
		return course.ErrNotFound
	}

	return nil
}
