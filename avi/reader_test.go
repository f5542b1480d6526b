package avi

import (
	"bufio"
	"bytes"
	"testing"
)

func TestSkipToMoviTolerant(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	buf.WriteString("JUNK")
	writeU32(&riffCounter{w: &buf}, 4)
	buf.Write([]byte{0, 0, 0, 0})
	buf.WriteString("LIST")
	writeU32(&riffCounter{w: &buf}, 8)
	buf.WriteString("INFO")
	buf.Write([]byte{1, 2, 3, 4})
	buf.WriteString("LIST")
	writeU32(&riffCounter{w: &buf}, 4)
	buf.WriteString("movi")

	if err := skipToMovi(bufio.NewReader(&buf)); err != nil {
		t.Fatalf("skipToMovi: %v", err)
	}
}

func TestSkipToMoviRejectsUnknownChunk(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	buf.WriteString("XYZZ")
	if err := skipToMovi(bufio.NewReader(&buf)); err == nil {
		t.Fatal("skipToMovi should reject an unrecognized chunk tag before movi")
	}
}

func TestNewReaderRejectsBadSignature(t *testing.T) {
	t.Parallel()

	if _, err := NewReader(bytes.NewReader([]byte("NOPE"))); err == nil {
		t.Fatal("NewReader with bad signature should fail")
	}
}
