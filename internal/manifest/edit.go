package manifest

import "bytes"

// Edit replaces Data[Start:End] with Text.
type Edit struct {
	Start int
	End   int
	Text  string
}

// Apply returns a copy of data with the edit applied.
func (e Edit) Apply(data []byte) []byte {
	out := make([]byte, 0, len(data)-(e.End-e.Start)+len(e.Text))
	out = append(out, data[:e.Start]...)
	out = append(out, e.Text...)
	out = append(out, data[e.End:]...)
	return out
}

// newline returns the line terminator used by data.
func newline(data []byte) string {
	if bytes.Contains(data, []byte("\r\n")) {
		return "\r\n"
	}
	return "\n"
}

// lineEnd returns the offset of the line terminator at or after off,
// or len(data) if the line is the last one.
func lineEnd(data []byte, off int) int {
	i := bytes.IndexByte(data[off:], '\n')
	if i < 0 {
		return len(data)
	}
	end := off + i
	if end > 0 && data[end-1] == '\r' {
		end--
	}
	return end
}

// lineStart returns the offset of the first byte of the line containing off.
func lineStart(data []byte, off int) int {
	return bytes.LastIndexByte(data[:off], '\n') + 1
}
