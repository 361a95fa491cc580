package plugin

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Request is one call from the host.
type Request struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// setParams is the argument object of the "set" method.
type setParams struct {
	TTL json.RawMessage `json:"ttl"`
}

// Handle dispatches req to the matching handler. It never panics on bad
// input; every problem is reported as a failed Response.
func (p *Plugin) Handle(ctx context.Context, req Request) Response {
	var resp Response

	switch req.Method {
	case "get":
		resp = p.Get(ctx)
	case "set":
		value, err := decodeTTL(req.Params)
		if err != nil {
			p.log.Errorf("Error setting TTL value: %s", err)
			resp = Fail(err)
			break
		}
		resp = p.Set(ctx, value)
	case "_main", "start":
		p.Start(ctx)
		resp = Response{Success: true}
	case "_unload", "unload":
		p.Unload(ctx)
		resp = Response{Success: true}
	case "_uninstall", "uninstall":
		p.Uninstall(ctx)
		resp = Response{Success: true}
	default:
		resp = Fail(fmt.Errorf("%w: %q", ErrUnknownMethod, req.Method))
	}

	if len(req.ID) > 0 {
		resp.ID = req.ID
	}
	return resp
}

// decodeTTL extracts the ttl argument as text. Numbers are forwarded as
// their literal token and strings as their contents, so the kernel sees
// exactly what the host sent.
func decodeTTL(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", ErrMissingTTL
	}

	var params setParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}

	token := strings.TrimSpace(string(params.TTL))
	if token == "" || token == "null" {
		return "", ErrMissingTTL
	}

	if strings.HasPrefix(token, `"`) {
		var s string
		if err := json.Unmarshal(params.TTL, &s); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidParams, err)
		}
		return s, nil
	}
	return token, nil
}

// MaxRequestSize bounds a single request line. Longer lines are answered
// with a failure and skipped.
const MaxRequestSize = 1 << 20

// Serve reads one JSON request per line from r and writes one JSON response
// per line to w until r is exhausted or ctx is done. Start runs before the
// first request and Unload after the last.
//
// On cancellation Serve returns ctx.Err() at once, even while a read is
// pending; the reading goroutine exits when r next returns.
func (p *Plugin) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	p.Start(ctx)
	defer p.Unload(ctx)

	lines := make(chan scanned)
	go readLines(ctx, r, lines)

	enc := json.NewEncoder(w)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var in scanned
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in, ok = <-lines:
		}
		if !ok {
			return nil
		}

		var resp Response
		switch {
		case errors.Is(in.err, ErrRequestTooLarge):
			p.log.Warnf("dropping oversized request: %s", in.err)
			resp = Fail(fmt.Errorf("%w: %v", ErrInvalidRequest, in.err))
		case in.err != nil:
			return fmt.Errorf("read request: %w", in.err)
		default:
			line := strings.TrimSpace(in.text)
			if line == "" {
				continue
			}
			resp = p.dispatch(ctx, line)
		}

		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
}

func (p *Plugin) dispatch(ctx context.Context, line string) Response {
	var req Request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		p.log.Warnf("dropping malformed request: %s", err)
		return Fail(fmt.Errorf("%w: %v", ErrInvalidRequest, err))
	}
	p.log.Debugw("request", "method", req.Method)
	return p.Handle(ctx, req)
}

// scanned is one line, or the error that ended or skipped it.
type scanned struct {
	text string
	err  error
}

// readLines feeds out until r is exhausted or ctx is done, then closes it.
func readLines(ctx context.Context, r io.Reader, out chan<- scanned) {
	defer close(out)

	br := bufio.NewReader(r)
	for {
		text, err := readLine(br, MaxRequestSize)
		if errors.Is(err, io.EOF) {
			return
		}

		select {
		case out <- scanned{text: text, err: err}:
		case <-ctx.Done():
			return
		}

		if err != nil && !errors.Is(err, ErrRequestTooLarge) {
			return
		}
	}
}

// readLine returns the next line without its terminator. A line longer than
// limit is consumed and reported as ErrRequestTooLarge.
func readLine(br *bufio.Reader, limit int) (string, error) {
	var buf []byte
	tooLong := false

	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			if tooLong {
				return "", fmt.Errorf("%w: more than %d bytes", ErrRequestTooLarge, limit)
			}
			return "", err
		}

		if !tooLong {
			if len(buf)+len(chunk) > limit {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}

		if !isPrefix {
			if tooLong {
				return "", fmt.Errorf("%w: more than %d bytes", ErrRequestTooLarge, limit)
			}
			return string(buf), nil
		}
	}
}
