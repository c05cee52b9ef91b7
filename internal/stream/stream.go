// Package stream implements the line protocol used to relay a streamed reply
// to the browser.
//
// Every line is "<tag>:<json>\n". Text fragments use tag "0" and a JSON
// string payload; the client mood uses "emoji"; a successful end is marked
// with a single "d" line. A body that ends without the "d" line was truncated.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Line tags.
const (
	TagText   = "0"
	TagEmoji  = "emoji"
	TagFinish = "d"
)

// finishLine is written once after a clean end.
const finishLine = `d:{"finishReason":"stop"}` + "\n"

// ErrBadLine is returned by Decode for lines that are not "<tag>:<payload>".
var ErrBadLine = errors.New("stream: malformed line")

// Source yields text fragments. *llm.Stream satisfies it.
type Source interface {
	Next() bool
	Text() string
	Err() error
}

// Result summarises a relay.
type Result struct {
	Fragments int
	Bytes     int
	Text      string
}

// Encode renders one line carrying text as a JSON string.
func Encode(tag, text string) string {
	b, _ := json.Marshal(text) // strings always marshal
	return tag + ":" + string(b) + "\n"
}

// Decode splits a line into its tag and, for string payloads, the decoded
// text. Non-string payloads such as the finish marker are returned raw.
func Decode(line string) (tag, text string, err error) {
	line = strings.TrimRight(line, "\r\n")
	i := strings.IndexByte(line, ':')
	if i <= 0 {
		return "", "", ErrBadLine
	}
	tag, payload := line[:i], line[i+1:]
	if strings.HasPrefix(payload, `"`) {
		if err := json.Unmarshal([]byte(payload), &text); err != nil {
			return "", "", fmt.Errorf("%w: %v", ErrBadLine, err)
		}
		return tag, text, nil
	}
	if !json.Valid([]byte(payload)) {
		return "", "", ErrBadLine
	}
	return tag, payload, nil
}

// Relay copies every non-empty fragment from src to w as a text line and
// flushes after each one. ctx is checked before every write, so once it is
// done nothing more is written. The returned error is ctx's error, a write
// error, or src.Err(); Result covers what was written before it.
func Relay(ctx context.Context, w io.Writer, src Source) (Result, error) {
	var (
		res Result
		all strings.Builder
	)
	fl, _ := w.(http.Flusher)

	for src.Next() {
		frag := src.Text()
		if frag == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			res.Text = all.String()
			return res, err
		}
		n, err := io.WriteString(w, Encode(TagText, frag))
		res.Bytes += n
		if err != nil {
			res.Text = all.String()
			return res, err
		}
		if fl != nil {
			fl.Flush()
		}
		res.Fragments++
		all.WriteString(frag)
	}
	res.Text = all.String()
	if err := src.Err(); err != nil {
		return res, err
	}
	return res, ctx.Err()
}

// WriteEmoji writes the mood line. Blank emoji writes nothing.
func WriteEmoji(w io.Writer, emoji string) error {
	if emoji == "" {
		return nil
	}
	_, err := io.WriteString(w, Encode(TagEmoji, emoji))
	return err
}

// WriteFinish writes the success marker and flushes.
func WriteFinish(w io.Writer) error {
	if _, err := io.WriteString(w, finishLine); err != nil {
		return err
	}
	if fl, ok := w.(http.Flusher); ok {
		fl.Flush()
	}
	return nil
}
