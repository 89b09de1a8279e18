package object

import (
	"bytes"
	"testing"
)

func sampleEntries() []TreeEntry {
	return []TreeEntry{
		{Hash: HashBytes([]byte("b")), Name: "b.txt", Type: EntryRegular, Perms: PermsReadWrite},
		{Hash: HashBytes([]byte("a")), Name: "a.sh", Type: EntryExecutable, Perms: PermsAll},
		{Hash: HashBytes([]byte("l")), Name: "link", Type: EntrySymlink, Perms: PermsAll},
		{Hash: HashBytes([]byte("d")), Name: "sub", Type: EntryDirectory, Perms: PermsAll},
	}
}

func TestMarshalTreeOrderIndependence(t *testing.T) {
	entries := sampleEntries()

	forward := MarshalTree(&TreeObj{Entries: entries})

	reversed := make([]TreeEntry, len(entries))
	for i, e := range entries {
		reversed[len(entries)-1-i] = e
	}
	backward := MarshalTree(&TreeObj{Entries: reversed})

	if !bytes.Equal(forward, backward) {
		t.Error("serialization depends on entry order")
	}
}

func TestTreeRoundTrip(t *testing.T) {
	tr := &TreeObj{Entries: sampleEntries()}
	data := MarshalTree(tr)

	parsed, err := UnmarshalTree(data)
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}
	if len(parsed.Entries) != len(tr.Entries) {
		t.Fatalf("entries: got %d, want %d", len(parsed.Entries), len(tr.Entries))
	}
	// Unmarshal yields name-sorted entries.
	wantNames := []string{"a.sh", "b.txt", "link", "sub"}
	wantTypes := []EntryType{EntryExecutable, EntryRegular, EntrySymlink, EntryDirectory}
	for i, e := range parsed.Entries {
		if e.Name != wantNames[i] {
			t.Errorf("entry %d name: got %q, want %q", i, e.Name, wantNames[i])
		}
		if e.Type != wantTypes[i] {
			t.Errorf("entry %d type: got %d, want %d", i, e.Type, wantTypes[i])
		}
	}
}

func TestHashTreeDistinguishesContents(t *testing.T) {
	tr1 := &TreeObj{Entries: []TreeEntry{
		{Hash: HashBytes([]byte("x")), Name: "f", Type: EntryRegular, Perms: PermsReadWrite},
	}}
	tr2 := &TreeObj{Entries: []TreeEntry{
		{Hash: HashBytes([]byte("y")), Name: "f", Type: EntryRegular, Perms: PermsReadWrite},
	}}
	if HashTree(tr1) == HashTree(tr2) {
		t.Error("different blob hashes produced same tree hash")
	}
}

func TestUnmarshalTreeRejectsGarbage(t *testing.T) {
	cases := [][]byte{
		[]byte("no terminator"),
		append([]byte("100644 deadbeef short"), 0),
		append([]byte("999999 "+HashBytes([]byte("x")).String()+" f"), 0),
	}
	for _, tc := range cases {
		if _, err := UnmarshalTree(tc); err == nil {
			t.Errorf("UnmarshalTree(%q): expected error", tc)
		}
	}
}
