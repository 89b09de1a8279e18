package object

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// MarshalTree serializes a TreeObj. Entries are sorted bytewise by Name
// for deterministic output. Each entry is one line:
//
//	mode hash name
//
// terminated by a NUL so that names may contain spaces. Hashing this
// serialization yields a root identity that is independent of the order
// entries were registered in.
func MarshalTree(tr *TreeObj) []byte {
	sorted := make([]TreeEntry, len(tr.Entries))
	copy(sorted, tr.Entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var buf bytes.Buffer
	for _, e := range sorted {
		fmt.Fprintf(&buf, "%s %s %s", e.Mode(), e.Hash.String(), e.Name)
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

// HashTree hashes the canonical serialization of a TreeObj.
func HashTree(tr *TreeObj) Hash {
	return HashBytes(MarshalTree(tr))
}

// UnmarshalTree parses a TreeObj from its serialized form.
func UnmarshalTree(data []byte) (*TreeObj, error) {
	tr := &TreeObj{}
	for len(data) > 0 {
		idx := bytes.IndexByte(data, 0)
		if idx < 0 {
			return nil, fmt.Errorf("unmarshal tree: unterminated entry")
		}
		line := string(data[:idx])
		data = data[idx+1:]

		parts := strings.SplitN(line, " ", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("unmarshal tree: malformed entry %q", line)
		}
		typ, perms, err := parseTreeMode(parts[0])
		if err != nil {
			return nil, fmt.Errorf("unmarshal tree: %w", err)
		}
		h, err := HashFromHex(parts[1])
		if err != nil {
			return nil, fmt.Errorf("unmarshal tree: %w", err)
		}
		tr.Entries = append(tr.Entries, TreeEntry{
			Hash:  h,
			Name:  parts[2],
			Type:  typ,
			Perms: perms,
		})
	}
	return tr, nil
}

func parseTreeMode(mode string) (EntryType, uint8, error) {
	switch mode {
	case TreeModeDir:
		return EntryDirectory, PermsAll, nil
	case TreeModeFile:
		return EntryRegular, PermsReadWrite, nil
	case TreeModeExecutable:
		return EntryExecutable, PermsAll, nil
	case TreeModeSymlink:
		return EntrySymlink, PermsAll, nil
	default:
		return 0, 0, fmt.Errorf("unknown mode %q", mode)
	}
}
