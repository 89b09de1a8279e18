package importer

import (
	"fmt"
	"io"
)

// Channel exchanges length-prefixed messages with the helper process
// over its standard input and output. One logical request is in flight
// at a time; Channel is not safe for concurrent use.
type Channel struct {
	w io.Writer
	r io.Reader

	nextRequestID uint32
	headerBuf     [ChunkHeaderSize]byte
}

// NewChannel wraps the helper's stdin (w) and stdout (r).
func NewChannel(w io.Writer, r io.Reader) *Channel {
	return &Channel{w: w, r: r, nextRequestID: 1}
}

// Send writes one request: a ChunkHeader followed by the payload
// segments. DataLength is the total segment length. The header and
// segments go out in a single gathered write so the helper never sees
// a partial request interleaved with another. Returns the allocated
// request ID.
func (c *Channel) Send(command, flags uint32, segments ...[]byte) (uint32, error) {
	total := 0
	for _, seg := range segments {
		total += len(seg)
	}

	header := ChunkHeader{
		RequestID:  c.nextRequestID,
		Command:    command,
		Flags:      flags,
		DataLength: uint32(total),
	}
	c.nextRequestID++

	buf := make([]byte, 0, ChunkHeaderSize+total)
	buf = header.appendTo(buf)
	for _, seg := range segments {
		buf = append(buf, seg...)
	}

	n, err := c.w.Write(buf)
	if err != nil {
		return 0, fmt.Errorf("send request %d: %v: %w", header.RequestID, err, ErrChannelClosed)
	}
	if n != len(buf) {
		return 0, fmt.Errorf("send request %d: short write (%d of %d bytes): %w",
			header.RequestID, n, len(buf), ErrChannelClosed)
	}
	return header.RequestID, nil
}

// RecvHeader reads the next ChunkHeader. If the header carries the
// error flag, the body is consumed and surfaced as a *HelperError;
// the request is complete and the channel stays consistent.
func (c *Channel) RecvHeader() (ChunkHeader, error) {
	if _, err := io.ReadFull(c.r, c.headerBuf[:]); err != nil {
		return ChunkHeader{}, fmt.Errorf("read chunk header: %v: %w", err, ErrTruncated)
	}
	header := parseChunkHeader(c.headerBuf[:])

	if header.Flags&FlagError != 0 {
		msg := make([]byte, header.DataLength)
		if err := c.RecvBody(msg); err != nil {
			return ChunkHeader{}, err
		}
		return ChunkHeader{}, &HelperError{Message: string(msg)}
	}
	return header, nil
}

// RecvBody reads exactly len(dst) body bytes.
func (c *Channel) RecvBody(dst []byte) error {
	if _, err := io.ReadFull(c.r, dst); err != nil {
		return fmt.Errorf("read chunk body: %v: %w", err, ErrTruncated)
	}
	return nil
}
