package source

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/gjson"

	"github.com/desertthunder/invsync/internal/shared"
)

// maxLineSize bounds a single record. Playlists with thousands of videos produce long lines.
const maxLineSize = 32 * 1024 * 1024

// ParseError reports a record line that was skipped.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

// Unwrap exposes both the [shared.ErrParse] category and the underlying cause.
func (e *ParseError) Unwrap() []error {
	return []error{shared.ErrParse, e.Err}
}

// record is one live document after compaction.
type record struct {
	id   string
	line int
	raw  []byte
}

// compact reads a NeDB file and returns its live documents in first-appearance order.
//
// The last line for an _id wins. A tombstone removes the document; a later line for the same
// _id starts a new document at the end.
func compact(ctx context.Context, name string, r io.Reader) ([]record, []*ParseError, error) {
	var (
		entries []*record
		index   = make(map[string]int)
		skipped []*ParseError
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%1000 == 0 && ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if line[0] != '{' || !gjson.ValidBytes(line) {
			skipped = append(skipped, &ParseError{File: name, Line: lineNo, Err: fmt.Errorf("invalid JSON document")})
			continue
		}

		raw := append([]byte(nil), line...)
		id := gjson.GetBytes(raw, "_id").String()

		if gjson.GetBytes(raw, "$$deleted").Bool() {
			if pos, ok := index[id]; ok && id != "" {
				entries[pos] = nil
				delete(index, id)
			}
			continue
		}

		if id == "" {
			entries = append(entries, &record{line: lineNo, raw: raw})
			continue
		}
		if pos, ok := index[id]; ok {
			entries[pos].raw = raw
			entries[pos].line = lineNo
			continue
		}
		index[id] = len(entries)
		entries = append(entries, &record{id: id, line: lineNo, raw: raw})
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", shared.ErrSourceRead, name, err)
	}

	out := make([]record, 0, len(entries))
	for _, e := range entries {
		if e != nil {
			out = append(out, *e)
		}
	}
	return out, skipped, nil
}

// compactFile opens path and compacts it.
func compactFile(ctx context.Context, path string) ([]record, []*ParseError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", shared.ErrSourceRead, err)
	}
	defer f.Close()

	return compact(ctx, path, f)
}
