package finder

import (
	"bytes"
	"os"
	"unicode/utf8"
)

// binaryProbeSize is how much of a file is checked for NUL bytes.
const binaryProbeSize = 8 * 1024

// readFile reads a whole file.
// Declared as a variable to allow mocking in tests.
var readFile = os.ReadFile

// readText returns the file contents as text. ok is false for files that
// cannot be read, look binary, or are not valid UTF-8; those are skipped.
func readText(path string) (text string, ok bool) {
	data, err := readFile(path)
	if err != nil {
		return "", false
	}
	return decode(data)
}

func decode(data []byte) (string, bool) {
	probe := data
	if len(probe) > binaryProbeSize {
		probe = probe[:binaryProbeSize]
	}
	if bytes.IndexByte(probe, 0) >= 0 {
		return "", false
	}
	if !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}

// line is a line of a document: content [start, end) followed by a
// terminator ending at next.
type line struct {
	start, end, next int
}

// splitLines splits text at \n, excluding \n and \r\n from line content.
// A trailing terminator does not start a new empty line.
func splitLines(text string) []line {
	var lines []line
	start := 0
	for start < len(text) {
		i := start
		for i < len(text) && text[i] != '\n' {
			i++
		}
		if i == len(text) {
			lines = append(lines, line{start: start, end: i, next: i})
			break
		}
		end := i
		if end > start && text[end-1] == '\r' {
			end--
		}
		lines = append(lines, line{start: start, end: end, next: i + 1})
		start = i + 1
	}
	return lines
}

// lineStart returns the offset of the first byte of the line containing off.
func lineStart(text string, off int) int {
	for off > 0 && text[off-1] != '\n' {
		off--
	}
	return off
}

// lineEnd returns the offset of the terminator of the line containing off,
// excluding a \r before the \n.
func lineEnd(text string, off int) int {
	for off < len(text) && text[off] != '\n' {
		off++
	}
	if off > 0 && off < len(text) && text[off-1] == '\r' {
		off--
	}
	return off
}

// lineNumber returns the 1-based line number of offset off.
func lineNumber(text string, off int) int {
	n := 1
	for i := 0; i < off && i < len(text); i++ {
		if text[i] == '\n' {
			n++
		}
	}
	return n
}
