// Package crypterr defines the error taxonomies shared by the encryption and decryption paths.
//
// Errors carry a closed Kind so callers can branch on the failure class without parsing strings.
// Decryption shares the keystream generation path with encryption, so every EncryptError
// converts losslessly into a DecryptError.
package crypterr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind uint8

const (
	// KindIO wraps an underlying filesystem or stream error.
	KindIO Kind = iota + 1
	// KindLengthMismatch reports operands of unequal length inside the round mixing function.
	KindLengthMismatch
	// KindFormat reports a file that is not an encrypted container or is corrupted.
	KindFormat
	// KindArgument reports a caller supplied value outside the accepted range.
	KindArgument
)

// String returns a short human readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindIO:
		return "i/o"
	case KindLengthMismatch:
		return "length mismatch"
	case KindFormat:
		return "not encrypted or corrupted"
	case KindArgument:
		return "invalid argument"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// EncryptError is returned by the encryption side of the engine.
type EncryptError struct {
	Kind Kind
	Path string
	Err  error
}

func (e *EncryptError) Error() string {
	return format("encrypt", e.Kind, e.Path, e.Err)
}

func (e *EncryptError) Unwrap() error { return e.Err }

// DecryptError is returned by the decryption side of the engine and by container parsing.
type DecryptError struct {
	Kind Kind
	Path string
	Err  error
}

func (e *DecryptError) Error() string {
	return format("decrypt", e.Kind, e.Path, e.Err)
}

func (e *DecryptError) Unwrap() error { return e.Err }

// Encrypt builds an EncryptError of the given kind.
func Encrypt(kind Kind, err error) *EncryptError {
	return &EncryptError{Kind: kind, Err: err}
}

// Decrypt builds a DecryptError of the given kind.
func Decrypt(kind Kind, err error) *DecryptError {
	return &DecryptError{Kind: kind, Err: err}
}

// FromEncrypt converts an encryption error into its decryption counterpart.
// Errors that are not EncryptErrors are classified by KindOf.
func FromEncrypt(err error) *DecryptError {
	if err == nil {
		return nil
	}

	var enc *EncryptError
	if errors.As(err, &enc) {
		return &DecryptError{Kind: enc.Kind, Path: enc.Path, Err: enc.Err}
	}

	var dec *DecryptError
	if errors.As(err, &dec) {
		return dec
	}

	return &DecryptError{Kind: KindIO, Err: err}
}

// WithPath attaches a path to err if it belongs to one of the taxonomies and has none yet.
func WithPath(err error, path string) error {
	var enc *EncryptError
	if errors.As(err, &enc) && enc.Path == "" {
		enc.Path = path
	}

	var dec *DecryptError
	if errors.As(err, &dec) && dec.Path == "" {
		dec.Path = path
	}

	return err
}

// KindOf returns the kind carried by err, or 0 if err is outside both taxonomies.
func KindOf(err error) Kind {
	var enc *EncryptError
	if errors.As(err, &enc) {
		return enc.Kind
	}

	var dec *DecryptError
	if errors.As(err, &dec) {
		return dec.Kind
	}

	return 0
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func format(side string, kind Kind, path string, err error) string {
	msg := side + ": " + kind.String()

	if path != "" {
		msg += fmt.Sprintf(" (%s)", path)
	}

	if err != nil {
		msg += ": " + err.Error()
	}

	return msg
}
