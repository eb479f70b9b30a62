package metamob

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("metamob: user not found")
	ErrUnauthorized = errors.New("metamob: request rejected, check the api key")
	ErrLoginFailed  = errors.New("metamob: login failed, check the credentials")
)

type Kind int

const (
	// KindTransient covers timeouts, connection resets, 429 and 5xx.
	// Callers may retry, each attempt still costs quota.
	KindTransient Kind = iota
	// KindPermanent covers unknown users, auth failures and malformed
	// responses. Retrying cannot help.
	KindPermanent
)

func (k Kind) String() string {
	if k == KindPermanent {
		return "permanent"
	}
	return "transient"
}

// Error wraps a failed call against the metamob site or API with its
// retry classification.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func transient(op string, err error) error {
	return &Error{Kind: KindTransient, Op: op, Err: err}
}

func permanent(op string, err error) error {
	return &Error{Kind: KindPermanent, Op: op, Err: err}
}

func IsTransient(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindTransient
}

func IsPermanent(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindPermanent
}
