package main

import (
	"github.com/desertwitch/fssim/internal/schema"
	"github.com/desertwitch/fssim/internal/storage"
)

// StorageAdapter exposes the devices opened by a [storage.Handler] as
// [schema.BlockDevice] for the file system session.
type StorageAdapter struct {
	*storage.Handler
}

func NewStorageAdapter(original *storage.Handler) *StorageAdapter {
	return &StorageAdapter{Handler: original}
}

func (a *StorageAdapter) Open(path string) (schema.BlockDevice, error) {
	dev, err := a.Handler.Open(path)
	if err != nil {
		return nil, err
	}

	return dev, nil
}
