package importer

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Commands understood by the SCM import helper.
const (
	CmdManifest uint32 = 1
	CmdCatFile  uint32 = 2
)

// ChunkHeader flag bits.
const (
	// FlagMoreChunks marks a response chunk with a continuation
	// following it.
	FlagMoreChunks uint32 = 0x01

	// FlagError marks a chunk whose body is a UTF-8 error message.
	FlagError uint32 = 0x02
)

// ChunkHeaderSize is the fixed wire size of a ChunkHeader.
const ChunkHeaderSize = 16

// ChunkHeader prefixes every message exchanged with the helper. All
// fields are big-endian on the wire.
type ChunkHeader struct {
	RequestID  uint32
	Command    uint32
	Flags      uint32
	DataLength uint32
}

func (h ChunkHeader) appendTo(buf []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, h.RequestID)
	buf = binary.BigEndian.AppendUint32(buf, h.Command)
	buf = binary.BigEndian.AppendUint32(buf, h.Flags)
	buf = binary.BigEndian.AppendUint32(buf, h.DataLength)
	return buf
}

func parseChunkHeader(raw []byte) ChunkHeader {
	return ChunkHeader{
		RequestID:  binary.BigEndian.Uint32(raw[0:4]),
		Command:    binary.BigEndian.Uint32(raw[4:8]),
		Flags:      binary.BigEndian.Uint32(raw[8:12]),
		DataLength: binary.BigEndian.Uint32(raw[12:16]),
	}
}

// ErrChannelClosed is returned when the helper pipe is closed or a
// write comes up short.
var ErrChannelClosed = errors.New("helper channel closed")

// ErrTruncated is returned when the helper pipe ends mid-message.
var ErrTruncated = errors.New("truncated read from helper")

// HelperError is an explicit failure reported by the helper process.
// The request is complete and the channel remains usable.
type HelperError struct {
	Message string
}

func (e *HelperError) Error() string {
	return fmt.Sprintf("helper error: %s", e.Message)
}

// ProtocolError reports malformed framing or manifest data. Fatal for
// the request; the channel may be left mid-stream and unrecoverable.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error: %s", e.Reason)
}
