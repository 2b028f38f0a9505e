package validation_test

import (
	"testing"

	"github.com/geocoder89/coursehub/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"emailAddress" validate:"required,email"`
	Code  string `json:"code" validate:"omitempty,len=3"`
	Note  string `json:"-"`
}

func TestStruct_Valid(t *testing.T) {
	got := validation.Struct(sample{Name: "n", Email: "a@b.com"}, nil)
	assert.Nil(t, got)
}

func TestStruct_CollectsEveryField(t *testing.T) {
	got := validation.Struct(sample{Code: "toolong"}, validation.Messages{
		"name.required": "custom name message",
	})

	require.Len(t, got, 3)

	assert.Equal(t, validation.FieldError{Field: "name", Rule: "required", Message: "custom name message"}, got[0])
	assert.Equal(t, "emailAddress", got[1].Field)
	assert.Equal(t, "required", got[1].Rule)
	assert.Equal(t, "is required", got[1].Message)
	assert.Equal(t, "code", got[2].Field)
	assert.Equal(t, "len", got[2].Rule)
	assert.Equal(t, "3", got[2].Param)
	assert.Equal(t, "must be exactly 3", got[2].Message)
}

func TestStruct_EmailSyntax(t *testing.T) {
	got := validation.Struct(sample{Name: "n", Email: "not-an-email"}, nil)

	require.Len(t, got, 1)
	assert.Equal(t, "email", got[0].Rule)
	assert.Equal(t, "must be a valid email address", got[0].Message)
}

func TestMessage_Fallbacks(t *testing.T) {
	assert.Equal(t, "must be at least 8", validation.Message("min", "8"))
	assert.Equal(t, "must be one of a, b", validation.Message("oneof", "a b"))
	assert.Equal(t, "failed uuid validation", validation.Message("uuid", ""))
	assert.Equal(t, "failed gt validation (2)", validation.Message("gt", "2"))
}
