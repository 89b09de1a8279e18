package status

import (
	"testing"

	"github.com/snapfs/snapfs/pkg/object"
)

func TestCostAccounting(t *testing.T) {
	empty := SeqStatusPair{Seq: 1, Status: NewStatus()}
	if got := empty.Cost(); got != 8+EmptyStatusSize {
		t.Errorf("empty cost = %d, want %d", got, 8+EmptyStatusSize)
	}

	st := NewStatus()
	st.Entries["f1234"] = StatusAdded
	pair := SeqStatusPair{Seq: 1, Status: st}
	// One entry adds its path length plus the enum size.
	want := 8 + EmptyStatusSize + 5 + 4
	if got := pair.Cost(); got != want {
		t.Errorf("cost = %d, want %d", got, want)
	}
}

func TestStatusEqual(t *testing.T) {
	a := NewStatus()
	a.Entries["x"] = StatusAdded
	b := NewStatus()
	b.Entries["x"] = StatusAdded

	if !a.Equal(b) {
		t.Error("identical statuses not equal")
	}

	b.Entries["x"] = StatusRemoved
	if a.Equal(b) {
		t.Error("different kinds compared equal")
	}

	b.Entries["x"] = StatusAdded
	b.Entries["y"] = StatusAdded
	if a.Equal(b) {
		t.Error("different sizes compared equal")
	}
}

func TestFileStatusString(t *testing.T) {
	cases := map[FileStatus]string{
		StatusClean:      "clean",
		StatusAdded:      "added",
		StatusModified:   "modified",
		StatusRemoved:    "removed",
		StatusIgnored:    "ignored",
		StatusNotTracked: "not-tracked",
		FileStatus(99):   "unknown",
	}
	for fs, want := range cases {
		if fs.String() != want {
			t.Errorf("String(%d) = %q, want %q", fs, fs.String(), want)
		}
	}
}

func TestCostUsesPathBytes(t *testing.T) {
	st := NewStatus()
	st.Entries[object.RelativePath("dir/nested/file.txt")] = StatusModified
	pair := SeqStatusPair{Seq: 9, Status: st}
	want := 8 + EmptyStatusSize + len("dir/nested/file.txt") + 4
	if got := pair.Cost(); got != want {
		t.Errorf("cost = %d, want %d", got, want)
	}
}
