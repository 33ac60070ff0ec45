// Package storage holds uploaded product images for the mock API.
package storage

import (
	"context"
	"io"
	"path"
	"strings"
)

type PutInput struct {
	// Folder groups objects, e.g. "products/12". Optional.
	Folder      string
	Filename    string
	ContentType string
	Size        int64
}

type PutResult struct {
	Key string
	URL string
}

type Storage interface {
	Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error)
	Delete(ctx context.Context, key string) error
}

// objectKey joins a cleaned folder with name. Any ".." in folder is dropped.
func objectKey(folder, name string) string {
	folder = strings.Trim(path.Clean("/"+folder), "/")
	if folder == "" {
		return name
	}
	return folder + "/" + name
}
