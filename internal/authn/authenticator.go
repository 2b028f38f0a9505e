// Package authn resolves the caller of a request from HTTP Basic credentials.
//
// The three ways a request can be rejected are kept distinct for server-side
// diagnostics only. Callers must answer all of them with the same response.
package authn

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/geocoder89/coursehub/internal/domain/user"
)

type Reason string

const (
	ReasonMissingCredentials Reason = "missing credentials"
	ReasonUnknownIdentifier  Reason = "unknown identifier"
	ReasonCredentialMismatch Reason = "credential mismatch"
)

// Label is a metric-friendly form of the reason.
func (r Reason) Label() string {
	switch r {
	case ReasonMissingCredentials:
		return "missing_credentials"
	case ReasonUnknownIdentifier:
		return "unknown_identifier"
	case ReasonCredentialMismatch:
		return "credential_mismatch"
	default:
		return "rejected"
	}
}

var ErrRejected = errors.New("authentication rejected")

// RejectedError is returned when the request does not carry valid credentials.
// Identifier is the submitted email, if any; the secret is never kept.
type RejectedError struct {
	Reason     Reason
	Identifier string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("authentication rejected: %s", e.Reason)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (user.User, error)
}

type Verifier interface {
	Verify(hash, plain string) error
	Burn(plain string)
}

type Authenticator struct {
	users    UserFinder
	verifier Verifier
}

func New(users UserFinder, verifier Verifier) *Authenticator {
	return &Authenticator{users: users, verifier: verifier}
}

// Authenticate returns the user the request's Basic credentials belong to.
// A *RejectedError means the credentials are missing or wrong; any other error
// comes from the user store and is not a rejection.
func (a *Authenticator) Authenticate(ctx context.Context, r *http.Request) (user.User, error) {
	email, secret, ok := r.BasicAuth()

	if !ok || email == "" {
		return user.User{}, &RejectedError{Reason: ReasonMissingCredentials}
	}

	u, err := a.users.FindByEmail(ctx, email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			a.verifier.Burn(secret)
			return user.User{}, &RejectedError{Reason: ReasonUnknownIdentifier, Identifier: email}
		}

		return user.User{}, fmt.Errorf("find user by email: %w", err)
	}

	err = a.verifier.Verify(u.PasswordHash, secret)

	if err != nil {
		return user.User{}, &RejectedError{Reason: ReasonCredentialMismatch, Identifier: email}
	}

	return u, nil
}
