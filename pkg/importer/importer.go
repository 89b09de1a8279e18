package importer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/snapfs/snapfs/pkg/object"
	"github.com/snapfs/snapfs/pkg/store"
)

// Importer issues manifest and file-content requests to one helper
// process. It owns the channel for the duration of each request;
// callers needing parallel imports run multiple Importers, each with
// its own helper.
type Importer struct {
	channel *Channel
	blobs   *store.BlobInfoStore

	// Chunk bodies are read into a buffer reused across chunks and
	// requests, grown only on under-capacity.
	buf []byte
}

// New creates an Importer speaking on channel and minting blob
// identities through blobs.
func New(channel *Channel, blobs *store.BlobInfoStore) *Importer {
	return &Importer{channel: channel, blobs: blobs}
}

// ImportManifest fetches the manifest for revName, registers a blob
// identity for every file, and returns the root tree identity.
func (imp *Importer) ImportManifest(ctx context.Context, revName string) (object.Hash, error) {
	if _, err := imp.channel.Send(CmdManifest, 0, []byte(revName)); err != nil {
		return object.Hash{}, err
	}

	assembler := NewAssembler()
	for {
		header, err := imp.channel.RecvHeader()
		if err != nil {
			return object.Hash{}, err
		}

		body := imp.chunkBuffer(header.DataLength)
		if err := imp.channel.RecvBody(body); err != nil {
			return object.Hash{}, err
		}

		for len(body) > 0 {
			body, err = imp.readManifestEntry(ctx, assembler, body)
			if err != nil {
				return object.Hash{}, err
			}
		}

		if header.Flags&FlagMoreChunks == 0 {
			break
		}
	}

	return assembler.Finish(), nil
}

// ImportFileContents resolves a blob identity to its (path, revision)
// pair and fetches the file contents from the helper.
func (imp *Importer) ImportFileContents(ctx context.Context, id object.Hash) ([]byte, error) {
	info, err := imp.blobs.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := imp.channel.Send(CmdCatFile, 0, info.Rev.Bytes(), info.Path.Bytes()); err != nil {
		return nil, err
	}

	// The helper returns file contents in a single chunk. Streaming
	// large files over several chunks is a protocol extension the
	// helper does not perform yet, so a continuation bit here means
	// the stream is misframed.
	header, err := imp.channel.RecvHeader()
	if err != nil {
		return nil, err
	}
	if header.Flags&FlagMoreChunks != 0 {
		return nil, &ProtocolError{Reason: fmt.Sprintf(
			"unexpected continuation chunk in contents of %q", info.Path)}
	}

	body := make([]byte, header.DataLength)
	if err := imp.channel.RecvBody(body); err != nil {
		return nil, err
	}
	return body, nil
}

// chunkBuffer returns the reusable body buffer sized to n bytes.
func (imp *Importer) chunkBuffer(n uint32) []byte {
	if uint32(cap(imp.buf)) < n {
		imp.buf = make([]byte, n)
	}
	imp.buf = imp.buf[:n]
	return imp.buf
}

// readManifestEntry parses one manifest entry from data, registers it
// with the assembler, and returns the remaining bytes.
//
// Wire form: hash[20] '\t' [flag '\t']? path '\0'. A flag byte equal
// to '\t' means the entry has no explicit flag (regular file) and
// consumes no second separator.
func (imp *Importer) readManifestEntry(ctx context.Context, assembler *Assembler, data []byte) ([]byte, error) {
	if len(data) < object.HashSize {
		return nil, &ProtocolError{Reason: fmt.Sprintf(
			"manifest entry truncated in hash (%d bytes left)", len(data))}
	}
	fileRev, err := object.HashFromBytes(data[:object.HashSize])
	if err != nil {
		return nil, &ProtocolError{Reason: err.Error()}
	}
	data = data[object.HashSize:]

	if len(data) < 2 {
		return nil, &ProtocolError{Reason: "manifest entry truncated after hash"}
	}
	if data[0] != '\t' {
		return nil, &ProtocolError{Reason: fmt.Sprintf("unexpected separator byte %d", data[0])}
	}
	flag := data[1]
	data = data[2:]

	if flag == '\t' {
		flag = ' '
	} else {
		if len(data) < 1 || data[0] != '\t' {
			return nil, &ProtocolError{Reason: fmt.Sprintf("missing separator after flag %q", flag)}
		}
		data = data[1:]
	}

	var typ object.EntryType
	var perms uint8
	switch flag {
	case ' ':
		typ, perms = object.EntryRegular, object.PermsReadWrite
	case 'x':
		typ, perms = object.EntryExecutable, object.PermsAll
	case 'l':
		typ, perms = object.EntrySymlink, object.PermsAll
	default:
		return nil, &ProtocolError{Reason: fmt.Sprintf("unsupported file flag %q", flag)}
	}

	nul := bytes.IndexByte(data, 0)
	if nul < 0 {
		return nil, &ProtocolError{Reason: "unterminated manifest path"}
	}
	path, err := object.ParseRelativePath(string(data[:nul]))
	if err != nil {
		return nil, &ProtocolError{Reason: err.Error()}
	}
	if path.IsEmpty() {
		return nil, &ProtocolError{Reason: "empty manifest path"}
	}
	data = data[nul+1:]

	blobID, err := imp.blobs.Put(ctx, path, fileRev)
	if err != nil {
		return nil, err
	}

	assembler.ProcessEntry(path.Dirname(), object.TreeEntry{
		Hash:  blobID,
		Name:  path.Basename(),
		Type:  typ,
		Perms: perms,
	})
	return data, nil
}
