package wire

import (
	"bytes"
	"errors"
	"testing"
)

func TestReadName(t *testing.T) {
	type test struct {
		name     string
		data     []byte
		startAt  int
		expected string
		endPos   int
	}

	// offset 12 holds "foo" + pointer to offset 18, which holds
	// "bar" + root.
	pointerMsg := append(make([]byte, 12), 3, 'f', 'o', 'o', 0xc0, 18, 3, 'b', 'a', 'r', 0)

	tests := []test{
		{
			name:     "plain name",
			data:     []byte{7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 3, 'c', 'o', 'm', 0},
			expected: "example.com.",
			endPos:   13,
		},
		{
			name:     "root name",
			data:     []byte{0},
			expected: ".",
			endPos:   1,
		},
		{
			name:     "compression pointer",
			data:     pointerMsg,
			startAt:  12,
			expected: "foo.bar.",
			endPos:   18,
		},
		{
			name:     "pointer target read in place",
			data:     pointerMsg,
			startAt:  18,
			expected: "bar.",
			endPos:   23,
		},
		{
			name:     "case preserved",
			data:     []byte{2, 'E', 'x', 2, 'C', 'o', 0},
			expected: "Ex.Co.",
			endPos:   7,
		},
	}

	for _, tc := range tests {
		r := NewReader(tc.data)
		r.SetPos(tc.startAt)

		got, err := r.ReadName()
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
			continue
		}
		if got != tc.expected {
			t.Errorf("%s: got %q, expected %q", tc.name, got, tc.expected)
		}
		if r.Pos() != tc.endPos {
			t.Errorf("%s: cursor at %d, expected %d", tc.name, r.Pos(), tc.endPos)
		}
	}
}

func TestReadNameMalformed(t *testing.T) {
	type test struct {
		name     string
		data     []byte
		expected error
	}

	// Two pointers referring to each other.
	loop := []byte{0xc0, 2, 0xc0, 0}

	// Valid labels that chain past the 255 octet cap via a pointer
	// pointing at themselves.
	selfPointer := []byte{3, 'a', 'b', 'c', 0xc0, 0}

	tests := []test{
		{name: "pointer loop", data: loop, expected: ErrPointerLoop},
		{name: "pointer out of range", data: []byte{0xc0, 99}, expected: ErrPointerRange},
		{name: "reserved label type", data: []byte{0x40, 0}, expected: ErrReservedLabel},
		{name: "self pointer expansion", data: selfPointer, expected: ErrFormat},
	}

	for _, tc := range tests {
		_, err := NewReader(tc.data).ReadName()
		if err == nil {
			t.Errorf("%s: expected error, got none", tc.name)
			continue
		}
		if !errors.Is(err, tc.expected) {
			t.Errorf("%s: got %v, expected %v", tc.name, err, tc.expected)
		}
	}
}

func TestLenientReads(t *testing.T) {
	r := NewReader([]byte{0xab})

	if got := r.ReadUint16(); got != 0xab00 {
		t.Errorf("short uint16 read got %#x, expected 0xab00", got)
	}
	if r.Pos() != 2 {
		t.Errorf("cursor at %d after short read, expected 2", r.Pos())
	}
	if got := r.ReadUint32(); got != 0 {
		t.Errorf("read past end got %#x, expected 0", got)
	}
	if !r.Truncated() {
		t.Error("reader did not record truncation")
	}
}

func TestReadCharString(t *testing.T) {
	r := NewReader([]byte{5, 'h', 'e', 'l', 'l', 'o', 0})

	if got := r.ReadCharString(); got != "hello" {
		t.Errorf("got %q, expected %q", got, "hello")
	}
	if got := r.ReadCharString(); got != "" {
		t.Errorf("empty string got %q", got)
	}
}

func TestSeek(t *testing.T) {
	r := NewReader([]byte{0, 1, 2, 3})
	r.ReadUint16()
	r.Seek(-2)

	if got := r.ReadUint16(); got != 1 {
		t.Errorf("re-read after seek got %d, expected 1", got)
	}
}

func TestAppendName(t *testing.T) {
	type test struct {
		name     string
		input    string
		expected []byte
		wantErr  bool
	}

	tests := []test{
		{
			name:     "fqdn",
			input:    "example.com.",
			expected: []byte{7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 3, 'c', 'o', 'm', 0},
		},
		{
			name:     "unqualified",
			input:    "example.com",
			expected: []byte{7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 3, 'c', 'o', 'm', 0},
		},
		{
			name:     "root",
			input:    ".",
			expected: []byte{0},
		},
		{
			name:    "empty label",
			input:   "foo..bar.",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		got, err := AppendName(nil, tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%s: expected error, got none", tc.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
			continue
		}
		if !bytes.Equal(got, tc.expected) {
			t.Errorf("%s: got %v, expected %v", tc.name, got, tc.expected)
		}
	}
}

func TestNameRoundTrip(t *testing.T) {
	for _, name := range []string{".", "example.com.", "a.b.c.d.example."} {
		encoded, err := AppendName(nil, name)
		if err != nil {
			t.Fatalf("encode %q: %v", name, err)
		}
		decoded, err := NewReader(encoded).ReadName()
		if err != nil {
			t.Fatalf("decode %q: %v", name, err)
		}
		if decoded != name {
			t.Errorf("round trip of %q yielded %q", name, decoded)
		}
	}
}
