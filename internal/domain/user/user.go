package user

import (
	"errors"
	"time"

	"github.com/geocoder89/coursehub/internal/validation"
)

type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	EmailAddress string    `json:"emailAddress"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile is what clients get to see of a user.
type Profile struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	EmailAddress string `json:"emailAddress"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		EmailAddress: u.EmailAddress,
	}
}

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)

// DuplicateEmailMessage is returned to clients when registration hits an existing address.
const DuplicateEmailMessage = "Email must be unique. This email already exists."

type CreateUserRequest struct {
	FirstName    string `json:"firstName" validate:"required"`
	LastName     string `json:"lastName" validate:"required"`
	EmailAddress string `json:"emailAddress" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8,max=20,maxbytes=72"`
}

var createUserMessages = validation.Messages{
	"firstName.required":    `Please provide a value for "first name"`,
	"lastName.required":     `Please provide a value for "last name"`,
	"emailAddress.required": `Please provide a value for "email"`,
	"emailAddress.email":    "Please provide a valid email address",
	"password.required":     `Please provide a value for "password"`,
	"password.min":          "Password length must be between 8 and 20 characters",
	"password.max":          "Password length must be between 8 and 20 characters",
	"password.maxbytes":     "Password length must be between 8 and 20 characters",
}

func (r CreateUserRequest) Validate() []validation.FieldError {
	return validation.Struct(r, createUserMessages)
}

// NewFromCreateRequest builds an unsaved user; the store assigns the ID.
func NewFromCreateRequest(req CreateUserRequest, passwordHash string) User {
	now := time.Now().UTC()

	return User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		EmailAddress: req.EmailAddress,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
