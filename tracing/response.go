// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package tracing

import (
	"context"
	"io"
	"net/http"
)

// Response is the result of a Handler.  It is either an Immediate or a Deferred.
type Response interface {
	response()
}

// Immediate is a response that is fully known when the handler returns.
type Immediate struct {
	// StatusCode is the HTTP status.  Zero means the status is unknown.
	StatusCode int

	// Header holds the response headers
	Header http.Header

	// Body is the response body.  See ContentLength for the representations whose size can be measured.
	Body interface{}
}

func (Immediate) response() {}

// Responder is the completion callback of a Deferred response.
type Responder func(Immediate)

// Deferred is a response whose final form is not known when the handler returns.  The host
// server invokes it with a Responder, and the Deferred calls that Responder, possibly later and
// from another goroutine, once the response is available.
type Deferred func(Responder)

func (Deferred) response() {}

// Handler is the downstream processing of a request.
type Handler interface {
	Handle(context.Context, *Request) (Response, error)
}

// HandlerFunc is a function type that implements Handler
type HandlerFunc func(context.Context, *Request) (Response, error)

func (hf HandlerFunc) Handle(ctx context.Context, r *Request) (Response, error) {
	return hf(ctx, r)
}

// ContentLength measures a response body.  Byte slices, strings, slices of either, values with
// a Len() int method and io.Seekers can be measured.  A nil body has length zero.  For any
// other body, or when measuring fails, this function returns false.
func ContentLength(body interface{}) (n int64, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			n, ok = 0, false
		}
	}()

	switch v := body.(type) {
	case nil:
		return 0, true

	case []byte:
		return int64(len(v)), true

	case string:
		return int64(len(v)), true

	case [][]byte:
		for _, chunk := range v {
			n += int64(len(chunk))
		}

		return n, true

	case []string:
		for _, chunk := range v {
			n += int64(len(chunk))
		}

		return n, true

	case interface{ Len() int }:
		return int64(v.Len()), true

	case io.Seeker:
		return seekLength(v)

	default:
		return 0, false
	}
}

// seekLength measures the remaining bytes of a seeker, leaving its offset unchanged
func seekLength(s io.Seeker) (int64, bool) {
	current, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, false
	}

	end, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, false
	}

	if _, err := s.Seek(current, io.SeekStart); err != nil {
		return 0, false
	}

	return end - current, true
}
