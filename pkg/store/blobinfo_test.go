package store

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/snapfs/snapfs/pkg/object"
)

func testBlobInfoStore(t *testing.T) (*BlobInfoStore, *MemoryStore) {
	t.Helper()
	mem := NewMemoryStore()
	return NewBlobInfoStore(mem), mem
}

func TestBlobInfoRoundTrip(t *testing.T) {
	s, _ := testBlobInfoStore(t)
	ctx := context.Background()

	path := object.RelativePath("dir/file.txt")
	rev := object.HashBytes([]byte("rev1"))

	id, err := s.Put(ctx, path, rev)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	info, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if info.Path != path {
		t.Errorf("path: got %q, want %q", info.Path, path)
	}
	if info.Rev != rev {
		t.Errorf("rev: got %s, want %s", info.Rev, rev)
	}
}

func TestBlobInfoDeterminism(t *testing.T) {
	s, mem := testBlobInfoStore(t)
	ctx := context.Background()

	path := object.RelativePath("a/b")
	rev := object.HashBytes([]byte("r"))

	id1, err := s.Put(ctx, path, rev)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	id2, err := s.Put(ctx, path, rev)
	if err != nil {
		t.Fatalf("Put again: %v", err)
	}
	if id1 != id2 {
		t.Errorf("identities differ: %s != %s", id1, id2)
	}
	if mem.Len() != 1 {
		t.Errorf("store holds %d records, want 1", mem.Len())
	}

	// A different pair must mint a different identity.
	id3, err := s.Put(ctx, object.RelativePath("a/c"), rev)
	if err != nil {
		t.Fatalf("Put other: %v", err)
	}
	if id3 == id1 {
		t.Error("distinct pairs minted the same identity")
	}
}

func TestBlobInfoUnknown(t *testing.T) {
	s, _ := testBlobInfoStore(t)

	_, err := s.Get(context.Background(), object.HashBytes([]byte("missing")))
	if !errors.Is(err, ErrUnknownBlob) {
		t.Errorf("got %v, want ErrUnknownBlob", err)
	}
}

func TestBlobInfoCorruptRecords(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name   string
		record []byte
	}{
		{"too short", make([]byte, 10)},
		{"declared length too long", func() []byte {
			r := make([]byte, object.HashSize)
			r = binary.BigEndian.AppendUint32(r, 100)
			return append(r, []byte("short")...)
		}()},
		{"declared length too short", func() []byte {
			r := make([]byte, object.HashSize)
			r = binary.BigEndian.AppendUint32(r, 1)
			return append(r, []byte("longer")...)
		}()},
		{"invalid path", func() []byte {
			r := make([]byte, object.HashSize)
			r = binary.BigEndian.AppendUint32(r, 4)
			return append(r, []byte("/abs")...)
		}()},
	}

	for _, tc := range cases {
		mem := NewMemoryStore()
		s := NewBlobInfoStore(mem)
		id := object.HashBytes([]byte(tc.name))
		if err := mem.Put(ctx, blobInfoKey(id), tc.record); err != nil {
			t.Fatalf("%s: seed: %v", tc.name, err)
		}

		_, err := s.Get(ctx, id)
		var corrupt *CorruptRecordError
		if !errors.As(err, &corrupt) {
			t.Errorf("%s: got %v, want CorruptRecordError", tc.name, err)
		}
	}
}

func TestBlobInfoKeySuffix(t *testing.T) {
	s, mem := testBlobInfoStore(t)
	ctx := context.Background()

	id, err := s.Put(ctx, object.RelativePath("f"), object.HashBytes([]byte("r")))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	want := append(id.Bytes(), 'h', 'g', 'x')
	ok, err := mem.Has(ctx, want)
	if err != nil || !ok {
		t.Errorf("record not stored under identity+hgx key (ok=%v err=%v)", ok, err)
	}
}
