// Package storeerr defines the error taxonomy shared by the storage, export and document
// packages. Every error carries a Kind usable with errors.Is and unwraps to a containerd
// errdefs class so transports can map it to a status without knowing the kind list.
package storeerr

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/containerd/errdefs"
)

// Kind identifies a failure class.
type Kind string

const (
	KindDirectoryUnavailable Kind = "directory_unavailable"
	KindIO                   Kind = "io"
	KindDecode               Kind = "decode"
	KindEncode               Kind = "encode"
)

func (k Kind) describe() string {
	switch k {
	case KindDirectoryUnavailable:
		return "directory unavailable"
	case KindIO:
		return "i/o failure"
	case KindDecode:
		return "invalid json"
	case KindEncode:
		return "cannot encode json"
	default:
		return string(k)
	}
}

// Sentinels for errors.Is comparisons.
var (
	ErrDirectoryUnavailable = &Error{Kind: KindDirectoryUnavailable}
	ErrIO                   = &Error{Kind: KindIO}
	ErrDecode               = &Error{Kind: KindDecode}
	ErrEncode               = &Error{Kind: KindEncode}
)

// Error is a classified failure of a filesystem-backed operation.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		if e.Path != "" {
			b.WriteString(" ")
			b.WriteString(e.Path)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.describe())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is matches sentinels by kind only.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Op != "" || t.Path != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

// Unwrap exposes both the errdefs class and the underlying cause.
func (e *Error) Unwrap() []error {
	errs := []error{e.class()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (e *Error) class() error {
	switch e.Kind {
	case KindDirectoryUnavailable:
		return errdefs.ErrUnavailable
	case KindDecode:
		return errdefs.ErrDataLoss
	case KindIO:
		switch {
		case errors.Is(e.Err, fs.ErrNotExist):
			return errdefs.ErrNotFound
		case errors.Is(e.Err, fs.ErrPermission):
			return errdefs.ErrPermissionDenied
		}
	}
	return errdefs.ErrInternal
}

func DirectoryUnavailable(op string, err error) error {
	return &Error{Kind: KindDirectoryUnavailable, Op: op, Err: err}
}

func IO(op, path string, err error) error {
	return &Error{Kind: KindIO, Op: op, Path: path, Err: err}
}

func Decode(op, path string, err error) error {
	return &Error{Kind: KindDecode, Op: op, Path: path, Err: err}
}

func Encode(op string, err error) error {
	return &Error{Kind: KindEncode, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
