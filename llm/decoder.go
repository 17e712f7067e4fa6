package llm

import (
	"bytes"
	"strings"
)

// LineDecoder turns the raw bytes of a streamed body into data payloads.
//
// Chunks may split a line anywhere; the unterminated tail of a chunk is kept
// and completed by the next one, so the decoded payloads do not depend on how
// the body was split into reads.
type LineDecoder struct {
	format  StreamFormat
	pending []byte
	done    bool
}

// NewLineDecoder creates a decoder for the given framing.
func NewLineDecoder(format StreamFormat) *LineDecoder {
	return &LineDecoder{format: format}
}

// Feed consumes one chunk and returns the payloads of every line it completes.
// After the done sentinel has been seen Feed returns nil.
func (d *LineDecoder) Feed(chunk []byte) []string {
	if d.done || len(chunk) == 0 {
		return nil
	}
	d.pending = append(d.pending, chunk...)

	var out []string
	for !d.done {
		idx := bytes.IndexByte(d.pending, '\n')
		if idx < 0 {
			break
		}
		line := string(d.pending[:idx])
		d.pending = d.pending[idx+1:]
		if payload, ok := d.parseLine(line); ok {
			out = append(out, payload)
		}
	}
	if len(d.pending) == 0 {
		d.pending = nil
	}
	return out
}

// Flush returns the payload of a final line that was not newline terminated.
func (d *LineDecoder) Flush() []string {
	if d.done || len(d.pending) == 0 {
		return nil
	}
	line := string(d.pending)
	d.pending = nil
	if payload, ok := d.parseLine(line); ok {
		return []string{payload}
	}
	return nil
}

// Done reports whether the done sentinel has been decoded.
func (d *LineDecoder) Done() bool {
	return d.done
}

func (d *LineDecoder) parseLine(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}
	if !strings.HasPrefix(line, d.format.DataPrefix) {
		// event:, id:, comments and stray fragments
		return "", false
	}
	data := strings.TrimSpace(strings.TrimPrefix(line, d.format.DataPrefix))
	if data == "" {
		return "", false
	}
	if d.format.DoneSentinel != "" && data == d.format.DoneSentinel {
		d.done = true
		d.pending = nil
		return "", false
	}
	return data, true
}
