package stream

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
)

// sliceSource yields fixed fragments, then err.
type sliceSource struct {
	frags []string
	i     int
	err   error
	// after is invoked once the fragment at index i has been consumed.
	after func(i int)
}

func (s *sliceSource) Next() bool {
	if s.i >= len(s.frags) {
		return false
	}
	s.i++
	if s.after != nil {
		s.after(s.i - 1)
	}
	return true
}
func (s *sliceSource) Text() string { return s.frags[s.i-1] }
func (s *sliceSource) Err() error   { return s.err }

type failWriter struct{ n int }

func (f *failWriter) Write(p []byte) (int, error) {
	if f.n == 0 {
		return 0, errors.New("broken pipe")
	}
	f.n--
	return len(p), nil
}

func TestEncodeDecode(t *testing.T) {
	line := Encode(TagText, "hello")
	if line != "0:\"hello\"\n" {
		t.Fatalf("Encode = %q", line)
	}
	tag, text, err := Decode(line)
	if err != nil || tag != TagText || text != "hello" {
		t.Fatalf("Decode = %q %q %v", tag, text, err)
	}

	tricky := "line1\n\"quoted\" ฉันควรลงทุนอะไรดี"
	_, back, err := Decode(Encode(TagText, tricky))
	if err != nil || back != tricky {
		t.Fatalf("round trip lost data: %q %v", back, err)
	}
	if strings.Count(Encode(TagText, tricky), "\n") != 1 {
		t.Fatalf("an encoded fragment must occupy exactly one line")
	}
}

func TestDecode_FinishAndErrors(t *testing.T) {
	tag, raw, err := Decode(strings.TrimSuffix(finishLine, "\n"))
	if err != nil || tag != TagFinish || raw != `{"finishReason":"stop"}` {
		t.Fatalf("finish decode = %q %q %v", tag, raw, err)
	}
	for _, bad := range []string{"", "nocolon", ":\"x\"", "0:\"unterminated", "0:{bad"} {
		if _, _, err := Decode(bad); !errors.Is(err, ErrBadLine) {
			t.Fatalf("Decode(%q) should fail with ErrBadLine, got %v", bad, err)
		}
	}
}

func TestRelay_WritesOneLinePerNonEmptyFragment(t *testing.T) {
	rec := httptest.NewRecorder()
	src := &sliceSource{frags: []string{"Hi", "", " there"}}

	res, err := Relay(context.Background(), rec, src)
	if err != nil {
		t.Fatalf("Relay: %v", err)
	}
	if res.Fragments != 2 || res.Text != "Hi there" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := rec.Body.String(); got != "0:\"Hi\"\n0:\" there\"\n" {
		t.Fatalf("body = %q", got)
	}
	if res.Bytes != rec.Body.Len() {
		t.Fatalf("Bytes = %d, body = %d", res.Bytes, rec.Body.Len())
	}
	if !rec.Flushed {
		t.Fatalf("relay should flush")
	}
}

func TestRelay_CancelStopsWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var buf bytes.Buffer
	src := &sliceSource{
		frags: []string{"a", "b", "c", "d"},
		after: func(i int) {
			if i == 2 {
				cancel()
			}
		},
	}

	res, err := Relay(ctx, &buf, src)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.Fragments != 2 || buf.String() != "0:\"a\"\n0:\"b\"\n" {
		t.Fatalf("exactly the delivered fragments should be written: %+v %q", res, buf.String())
	}
}

func TestRelay_SourceError(t *testing.T) {
	var buf bytes.Buffer
	boom := errors.New("upstream reset")
	res, err := Relay(context.Background(), &buf, &sliceSource{frags: []string{"x"}, err: boom})
	if !errors.Is(err, boom) || res.Fragments != 1 {
		t.Fatalf("expected source error after 1 fragment, got %+v %v", res, err)
	}
	if strings.Contains(buf.String(), "d:") {
		t.Fatalf("relay never writes the finish marker")
	}
}

func TestRelay_WriteError(t *testing.T) {
	_, err := Relay(context.Background(), &failWriter{n: 1}, &sliceSource{frags: []string{"a", "b"}})
	if err == nil || err.Error() != "broken pipe" {
		t.Fatalf("expected write error, got %v", err)
	}
}

func TestWriteEmojiAndFinish(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := WriteEmoji(rec, ""); err != nil || rec.Body.Len() != 0 {
		t.Fatalf("blank emoji should write nothing")
	}
	if err := WriteEmoji(rec, "😟"); err != nil {
		t.Fatalf("WriteEmoji: %v", err)
	}
	if err := WriteFinish(rec); err != nil {
		t.Fatalf("WriteFinish: %v", err)
	}
	want := "emoji:\"😟\"\n" + `d:{"finishReason":"stop"}` + "\n"
	if rec.Body.String() != want {
		t.Fatalf("body = %q, want %q", rec.Body.String(), want)
	}
}
