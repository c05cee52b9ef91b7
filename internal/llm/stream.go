package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

const (
	streamScannerInitialBuffer = 64 * 1024
	streamScannerMaxBuffer     = 512 * 1024
)

// Stream iterates over the content fragments of a streamed completion.
//
//	for s.Next() {
//		fmt.Print(s.Text())
//	}
//	if err := s.Err(); err != nil { ... }
//
// A Stream is finite and cannot be restarted. It is not safe for concurrent
// use; cancel the context passed to Client.Stream to stop it from elsewhere.
type Stream struct {
	parent  context.Context
	reqCtx  context.Context
	cancel  context.CancelFunc
	body    io.ReadCloser
	scanner *bufio.Scanner
	onEnd   func(error)

	text string
	err  error
	done bool

	closeOnce sync.Once
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func newStream(parent, reqCtx context.Context, cancel context.CancelFunc, body io.ReadCloser, onEnd func(error)) *Stream {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, streamScannerInitialBuffer), streamScannerMaxBuffer)
	return &Stream{
		parent:  parent,
		reqCtx:  reqCtx,
		cancel:  cancel,
		body:    body,
		scanner: sc,
		onEnd:   onEnd,
	}
}

// Next advances to the next non-empty fragment. It returns false once the
// provider signals the end, the connection fails, or the context is done.
func (s *Stream) Next() bool {
	if s.done {
		return false
	}
	for {
		if err := s.reqCtx.Err(); err != nil {
			s.finish(transportError(s.parent, s.reqCtx, err))
			return false
		}
		if !s.scanner.Scan() {
			err := s.scanner.Err()
			if err != nil || s.reqCtx.Err() != nil {
				if err == nil {
					err = s.reqCtx.Err()
				}
				err = transportError(s.parent, s.reqCtx, err)
			}
			s.finish(err)
			return false
		}

		line := strings.TrimSpace(s.scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}
		if payload == "[DONE]" {
			s.finish(nil)
			return false
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			zerolog.Ctx(s.parent).Debug().Err(err).Msg("llm: skipping undecodable stream chunk")
			continue
		}
		if chunk.Error != nil {
			s.finish(&UpstreamError{Type: chunk.Error.Type, Message: chunk.Error.Message, Detail: payload})
			return false
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}

		s.text = chunk.Choices[0].Delta.Content
		llmFragments.Inc()
		return true
	}
}

// Text returns the fragment produced by the last successful Next.
func (s *Stream) Text() string { return s.text }

// Err returns the error that ended the stream, or nil after a clean end.
// Caller cancellation is reported as the context's error.
func (s *Stream) Err() error { return s.err }

// Close releases the connection. It is safe to call more than once. Closing
// a stream that has not ended records it as cancelled.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.cancel()
		err = s.body.Close()
		if !s.done {
			s.finish(context.Canceled)
		}
	})
	return err
}

func (s *Stream) finish(err error) {
	if s.done {
		return
	}
	s.done = true
	s.text = ""
	s.err = err
	if s.onEnd != nil {
		s.onEnd(err)
	}
	s.cancel()
}
