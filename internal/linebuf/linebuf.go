// Package linebuf turns chunked byte streams into complete log lines.
//
// A source hands over bytes in whatever sizes its transport produces. The
// caller keeps the unconsumed tail returned by Split and passes it back with
// the next chunk, so a line split across any number of reads comes out whole.
package linebuf

import (
	"bytes"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Split joins tail and chunk, drops every NUL byte and cuts the result into
// newline-terminated lines. Each returned line keeps its '\n'. rest holds the
// bytes after the last newline and is never nil-aliased to chunk.
func Split(tail, chunk []byte) (lines [][]byte, rest []byte) {
	buf := make([]byte, 0, len(tail)+len(chunk))
	buf = appendWithoutNUL(buf, tail)
	buf = appendWithoutNUL(buf, chunk)

	consumed := 0
	for {
		i := bytes.IndexByte(buf[consumed:], '\n')
		if i < 0 {
			break
		}
		end := consumed + i + 1
		lines = append(lines, buf[consumed:end])
		consumed = end
	}

	rest = append([]byte(nil), buf[consumed:]...)
	return lines, rest
}

func appendWithoutNUL(dst, src []byte) []byte {
	for len(src) > 0 {
		i := bytes.IndexByte(src, 0)
		if i < 0 {
			return append(dst, src...)
		}
		dst = append(dst, src[:i]...)
		src = src[i+1:]
	}
	return dst
}

// Decode converts a raw line into display text. Invalid UTF-8 is replaced
// with U+FFFD, terminal escape sequences are removed and the line terminator
// is trimmed.
func Decode(line []byte) string {
	text := strings.ToValidUTF8(string(line), "\uFFFD")
	text = strings.TrimSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\r")
	return ansi.Strip(text)
}
