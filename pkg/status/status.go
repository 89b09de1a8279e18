package status

import (
	"github.com/snapfs/snapfs/pkg/object"
)

// FileStatus classifies one path in a working-copy-versus-commit diff.
type FileStatus int32

const (
	StatusClean FileStatus = iota
	StatusAdded
	StatusModified
	StatusRemoved
	StatusIgnored
	StatusNotTracked
)

// String returns the short name used in logs and the CLI.
func (s FileStatus) String() string {
	switch s {
	case StatusClean:
		return "clean"
	case StatusAdded:
		return "added"
	case StatusModified:
		return "modified"
	case StatusRemoved:
		return "removed"
	case StatusIgnored:
		return "ignored"
	case StatusNotTracked:
		return "not-tracked"
	default:
		return "unknown"
	}
}

// Status is the working-copy-versus-commit diff: a mapping from path
// to change kind. Paths that are clean are normally omitted.
type Status struct {
	Entries map[object.RelativePath]FileStatus
}

// NewStatus creates an empty Status.
func NewStatus() Status {
	return Status{Entries: make(map[object.RelativePath]FileStatus)}
}

// Equal reports whether two statuses hold the same entries.
func (s Status) Equal(other Status) bool {
	if len(s.Entries) != len(other.Entries) {
		return false
	}
	for path, fs := range s.Entries {
		if got, ok := other.Entries[path]; !ok || got != fs {
			return false
		}
	}
	return true
}

// SeqStatusPair couples a status with the journal sequence number it
// was computed at.
type SeqStatusPair struct {
	Seq    uint64
	Status Status
}

const (
	// sequenceSize is the accounted size of the sequence number.
	sequenceSize = 8

	// EmptyStatusSize is the accounted base size of a Status before
	// any entries.
	EmptyStatusSize = 104

	// statusEnumSize is the accounted size of one FileStatus value.
	statusEnumSize = 4
)

// Cost returns the accounted size of the pair in bytes.
func (p SeqStatusPair) Cost() int {
	cost := sequenceSize + EmptyStatusSize
	for path := range p.Status.Entries {
		cost += len(path) + statusEnumSize
	}
	return cost
}
