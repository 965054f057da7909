// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package tracinghttp

import (
	"bufio"
	"io"
	"net"
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/xmidt-org/servertrace/tracing"
)

// bytesWritten is the measurable body of a response that has already been written
type bytesWritten int64

func (bw bytesWritten) Len() int {
	return int(bw)
}

// unmeasured is the body of a response whose size cannot be known, e.g. a hijacked connection
type unmeasured struct{}

// recorder observes what a handler writes to its http.ResponseWriter.  Like the
// http.ResponseWriter it wraps, it is not safe for concurrent use.
type recorder struct {
	statusCode int
	written    int64
	hijacked   bool
}

// wrap decorates response.  The returned writer implements the same optional
// interfaces, e.g. http.Flusher or http.Hijacker, as response.
func (rec *recorder) wrap(response http.ResponseWriter) http.ResponseWriter {
	return httpsnoop.Wrap(response, httpsnoop.Hooks{
		WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
			return func(code int) {
				// informational codes are not final
				if rec.statusCode == 0 && code >= 200 {
					rec.statusCode = code
				}

				next(code)
			}
		},
		Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
			return func(p []byte) (int, error) {
				rec.implicitHeader()
				n, err := next(p)
				rec.written += int64(n)
				return n, err
			}
		},
		ReadFrom: func(next httpsnoop.ReadFromFunc) httpsnoop.ReadFromFunc {
			return func(src io.Reader) (int64, error) {
				rec.implicitHeader()
				n, err := next(src)
				rec.written += n
				return n, err
			}
		},
		Flush: func(next httpsnoop.FlushFunc) httpsnoop.FlushFunc {
			return func() {
				rec.implicitHeader()
				next()
			}
		},
		Hijack: func(next httpsnoop.HijackFunc) httpsnoop.HijackFunc {
			return func() (net.Conn, *bufio.ReadWriter, error) {
				conn, rw, err := next()
				if err == nil {
					rec.hijacked = true
				}

				return conn, rw, err
			}
		},
	})
}

// implicitHeader mimics net/http, which sends a 200 on the first write if no status was set
func (rec *recorder) implicitHeader() {
	if rec.statusCode == 0 {
		rec.statusCode = http.StatusOK
	}
}

// response describes what was written.  A handler that wrote nothing at all still
// produces a 200, since that is what net/http sends on its behalf.
func (rec *recorder) response(header http.Header) tracing.Immediate {
	if rec.hijacked {
		return tracing.Immediate{
			Header: header,
			Body:   unmeasured{},
		}
	}

	code := rec.statusCode
	if code == 0 {
		code = http.StatusOK
	}

	return tracing.Immediate{
		StatusCode: code,
		Header:     header,
		Body:       bytesWritten(rec.written),
	}
}
