package course

import (
	"errors"
	"time"

	"github.com/geocoder89/coursehub/internal/domain/user"
	"github.com/geocoder89/coursehub/internal/validation"
)

type Course struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	EstimatedTime   *string   `json:"estimatedTime"`
	MaterialsNeeded *string   `json:"materialsNeeded"`
	OwnerID         int64     `json:"userId"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

// WithOwner is the read model: a course plus the public profile of its owner.
type WithOwner struct {
	Course
	Owner user.Profile `json:"user"`
}

var ErrNotFound = errors.New("course not found")

// Neither request carries an owner: ownership comes from the authenticated identity.
type CreateCourseRequest struct {
	Title           string  `json:"title" validate:"required"`
	Description     string  `json:"description" validate:"required"`
	EstimatedTime   *string `json:"estimatedTime"`
	MaterialsNeeded *string `json:"materialsNeeded"`
}

// a full update of the required fields; optional fields are only written when present.
type UpdateCourseRequest struct {
	Title           string  `json:"title" validate:"required"`
	Description     string  `json:"description" validate:"required"`
	EstimatedTime   *string `json:"estimatedTime"`
	MaterialsNeeded *string `json:"materialsNeeded"`
}

var courseMessages = validation.Messages{
	"title.required":       `Please provide a value for "title"`,
	"description.required": `Please provide a value for "description"`,
}

func (r CreateCourseRequest) Validate() []validation.FieldError {
	return validation.Struct(r, courseMessages)
}

func (r UpdateCourseRequest) Validate() []validation.FieldError {
	return validation.Struct(r, courseMessages)
}
