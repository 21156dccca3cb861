package encryption

import (
	"errors"

	"github.com/tomerhc/broken/internal/crypterr"
)

var (
	// ErrSameOutput is returned when the output path of a file would overwrite the file itself.
	ErrSameOutput = errors.New("output path equals input path")
	// ErrNoKey is returned when the processor is created without key material.
	ErrNoKey = errors.New("key must not be empty")
)

// encryptErr classifies err on the encryption side, defaulting to an I/O failure.
func encryptErr(err error) error {
	if err == nil || crypterr.KindOf(err) != 0 {
		return err
	}

	return crypterr.Encrypt(crypterr.KindIO, err)
}

// decryptErr classifies err on the decryption side, converting encryption errors.
func decryptErr(err error) error {
	if err == nil {
		return nil
	}

	return crypterr.FromEncrypt(err)
}
