package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/snapfs/snapfs/pkg/object"
)

// blobDataSuffix namespaces cached blob contents inside the shared
// byte-store.
var blobDataSuffix = []byte("hgb")

// BlobDataStore caches imported file contents so repeated reads of
// the same blob never re-enter the SCM helper. Values are stored
// zstd-compressed.
type BlobDataStore struct {
	store ByteStore
}

// NewBlobDataStore wraps a ByteStore.
func NewBlobDataStore(bs ByteStore) *BlobDataStore {
	return &BlobDataStore{store: bs}
}

// Put stores the contents for a blob identity.
func (s *BlobDataStore) Put(ctx context.Context, id object.Hash, data []byte) error {
	compressed, err := compressZstd(data)
	if err != nil {
		return fmt.Errorf("blob data put: %w", err)
	}
	if err := s.store.Put(ctx, blobDataKey(id), compressed); err != nil {
		return fmt.Errorf("blob data put: %w", err)
	}
	return nil
}

// Get returns the contents for a blob identity, or ErrUnknownBlob when
// the blob has not been cached.
func (s *BlobDataStore) Get(ctx context.Context, id object.Hash) ([]byte, error) {
	compressed, err := s.store.Get(ctx, blobDataKey(id))
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("blob data for %s: %w", id, ErrUnknownBlob)
	}
	if err != nil {
		return nil, fmt.Errorf("blob data get: %w", err)
	}
	data, err := decompressZstd(compressed)
	if err != nil {
		return nil, fmt.Errorf("blob data for %s: %w", id, err)
	}
	return data, nil
}

// Has reports whether contents are cached for a blob identity.
func (s *BlobDataStore) Has(ctx context.Context, id object.Hash) (bool, error) {
	return s.store.Has(ctx, blobDataKey(id))
}

func blobDataKey(id object.Hash) []byte {
	key := make([]byte, 0, object.HashSize+len(blobDataSuffix))
	key = append(key, id.Bytes()...)
	key = append(key, blobDataSuffix...)
	return key
}

func compressZstd(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func decompressZstd(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
