// Package storage gates and performs writes into the user's download folder.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/suteetoe/tokokita/pkg/apperr"
)

// Authorizer grants permission to write documents
type Authorizer interface {
	Authorize(ctx context.Context) error
}

// AuthorizerFunc adapts a function to Authorizer
type AuthorizerFunc func(ctx context.Context) error

func (f AuthorizerFunc) Authorize(ctx context.Context) error { return f(ctx) }

// Allow always grants
func Allow() Authorizer {
	return AuthorizerFunc(func(context.Context) error { return nil })
}

// Deny always refuses with StorageUnavailable
func Deny() Authorizer {
	return AuthorizerFunc(func(context.Context) error {
		return apperr.StorageUnavailable("storage permission denied", nil)
	})
}

// DirAuthorizer grants access when Dir exists (or can be created) and is writable
type DirAuthorizer struct {
	Dir string
}

func (a DirAuthorizer) Authorize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return apperr.StorageUnavailable("download folder is not available", err)
	}
	probe, err := os.CreateTemp(a.Dir, ".tokokita-probe-*")
	if err != nil {
		return apperr.StorageUnavailable("download folder is not writable", err)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}

// WriteFile writes data to dir/name through a temporary file in the same
// directory, so a failed write never leaves a truncated document behind.
func WriteFile(dir, name string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return "", apperr.StorageUnavailable("could not create file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", apperr.StorageUnavailable("could not write file", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", apperr.StorageUnavailable("could not write file", err)
	}

	dest := filepath.Join(dir, name)
	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return "", apperr.StorageUnavailable(fmt.Sprintf("could not move file to %s", dir), err)
	}
	return dest, nil
}
