package store

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/snapfs/snapfs/pkg/object"
)

// blobInfoSuffix namespaces blob-info records inside the shared
// byte-store. A future schema may use a dedicated table instead.
var blobInfoSuffix = []byte("hgx")

// ErrUnknownBlob is returned when no blob-info record exists for an
// identity.
var ErrUnknownBlob = errors.New("unknown blob identity")

// CorruptRecordError reports a blob-info record that failed its
// structural invariants.
type CorruptRecordError struct {
	ID     object.Hash
	Reason string
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("corrupt blob-info record for %s: %s", e.ID, e.Reason)
}

// BlobInfo is the (path, SCM revision hash) pair a blob identity
// resolves to.
type BlobInfo struct {
	Path object.RelativePath
	Rev  object.Hash
}

// BlobInfoStore translates (path, revision) pairs to internal blob
// identities and back.
//
// The SCM assigns file revision hashes scoped to a path, so a revision
// hash alone does not name contents. Hashing the serialized
// (path, revision) pair yields a path-independent identity the rest of
// the system can treat as opaque. The identity-to-pair mapping lives
// in the byte-store so blob reads can be reversed later.
type BlobInfoStore struct {
	store ByteStore
}

// NewBlobInfoStore wraps a ByteStore.
func NewBlobInfoStore(bs ByteStore) *BlobInfoStore {
	return &BlobInfoStore{store: bs}
}

// Put mints the blob identity for (path, rev) and persists the record.
// Deterministic: the same pair always yields the same identity. The
// write is skipped when the record already exists.
func (s *BlobInfoStore) Put(ctx context.Context, path object.RelativePath, rev object.Hash) (object.Hash, error) {
	record := marshalBlobInfo(path, rev)
	id := object.HashBytes(record)

	key := blobInfoKey(id)
	ok, err := s.store.Has(ctx, key)
	if err != nil {
		return object.Hash{}, fmt.Errorf("blob info put: %w", err)
	}
	if ok {
		return id, nil
	}
	if err := s.store.Put(ctx, key, record); err != nil {
		return object.Hash{}, fmt.Errorf("blob info put: %w", err)
	}
	return id, nil
}

// Get resolves a blob identity back to its (path, rev) pair. Returns
// ErrUnknownBlob when no record exists and *CorruptRecordError when
// the stored record violates the layout invariants.
func (s *BlobInfoStore) Get(ctx context.Context, id object.Hash) (BlobInfo, error) {
	record, err := s.store.Get(ctx, blobInfoKey(id))
	if errors.Is(err, ErrNotFound) {
		return BlobInfo{}, fmt.Errorf("blob info for %s: %w", id, ErrUnknownBlob)
	}
	if err != nil {
		return BlobInfo{}, fmt.Errorf("blob info get: %w", err)
	}
	return unmarshalBlobInfo(id, record)
}

func blobInfoKey(id object.Hash) []byte {
	key := make([]byte, 0, object.HashSize+len(blobInfoSuffix))
	key = append(key, id.Bytes()...)
	key = append(key, blobInfoSuffix...)
	return key
}

// marshalBlobInfo lays the pair out as
// rev[20] || path_length uint32 big-endian || path_bytes.
func marshalBlobInfo(path object.RelativePath, rev object.Hash) []byte {
	pathBytes := path.Bytes()
	record := make([]byte, 0, object.HashSize+4+len(pathBytes))
	record = append(record, rev.Bytes()...)
	record = binary.BigEndian.AppendUint32(record, uint32(len(pathBytes)))
	record = append(record, pathBytes...)
	return record
}

func unmarshalBlobInfo(id object.Hash, record []byte) (BlobInfo, error) {
	if len(record) < object.HashSize+4 {
		return BlobInfo{}, &CorruptRecordError{
			ID:     id,
			Reason: fmt.Sprintf("record is too short (%d bytes)", len(record)),
		}
	}

	rev, err := object.HashFromBytes(record[:object.HashSize])
	if err != nil {
		return BlobInfo{}, &CorruptRecordError{ID: id, Reason: err.Error()}
	}

	pathLen := binary.BigEndian.Uint32(record[object.HashSize : object.HashSize+4])
	rest := record[object.HashSize+4:]
	if uint32(len(rest)) != pathLen {
		return BlobInfo{}, &CorruptRecordError{
			ID:     id,
			Reason: fmt.Sprintf("inconsistent path length (declared %d, have %d)", pathLen, len(rest)),
		}
	}

	// Copy the path out of the record so the caller never aliases
	// store-owned bytes.
	path, err := object.ParseRelativePath(string(rest))
	if err != nil {
		return BlobInfo{}, &CorruptRecordError{ID: id, Reason: err.Error()}
	}
	return BlobInfo{Path: path, Rev: rev}, nil
}
