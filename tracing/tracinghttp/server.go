// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package tracinghttp

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/xmidt-org/sallust"
	"github.com/xmidt-org/servertrace/tracing"
	"go.uber.org/zap"
)

// ErrUnsupportedBody is returned by WriteResponse for body representations it cannot write.
var ErrUnsupportedBody = errors.New("unsupported response body")

// Server hosts a tracing.Handler over net/http.  Typically, the Handler is the result of
// tracing.Middleware.Then.
//
// Immediate responses are written as is.  For Deferred responses, the Server invokes the Deferred
// on the request goroutine and writes the first response passed to the completion callback.  If
// the request is cancelled first, nothing is written.  Handler errors are answered with a JSON 500.
type Server struct {
	Handler              tracing.Handler
	Logger               *zap.Logger
	ForwardedProtoHeader string
}

func (s Server) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}

	return sallust.Default()
}

func (s Server) forwardedProtoHeader() string {
	if len(s.ForwardedProtoHeader) > 0 {
		return s.ForwardedProtoHeader
	}

	return tracing.DefaultForwardedProtoHeader
}

func (s Server) ServeHTTP(response http.ResponseWriter, request *http.Request) {
	logger := s.logger()
	result, err := s.Handler.Handle(request.Context(), NewRequest(request, s.forwardedProtoHeader()))
	if err != nil {
		logger.Error("request handler failed", zap.String("method", request.Method), zap.String("path", request.URL.Path), zap.Error(err))
		WriteError(response, http.StatusInternalServerError, err.Error())
		return
	}

	switch v := result.(type) {
	case tracing.Immediate:
		s.write(logger, response, v)

	case *tracing.Immediate:
		if v != nil {
			s.write(logger, response, *v)
		}

	case tracing.Deferred:
		s.await(logger, response, request, v)
	}
}

func (s Server) write(logger *zap.Logger, response http.ResponseWriter, r tracing.Immediate) {
	if _, err := WriteResponse(response, r); err != nil {
		logger.Error("unable to write response", zap.Int("statusCode", r.StatusCode), zap.Error(err))
	}
}

// await runs a Deferred and blocks until it completes or the request is cancelled
func (s Server) await(logger *zap.Logger, response http.ResponseWriter, request *http.Request, d tracing.Deferred) {
	if d == nil {
		logger.Error("handler returned a nil deferred response")
		WriteError(response, http.StatusInternalServerError, "no response")
		return
	}

	completed := make(chan tracing.Immediate, 1)
	d(func(final tracing.Immediate) {
		select {
		case completed <- final:
		default:
			logger.Debug("ignoring repeated deferred completion", zap.Int("statusCode", final.StatusCode))
		}
	})

	select {
	case final := <-completed:
		s.write(logger, response, final)

	case <-request.Context().Done():
		logger.Info("request ended before its deferred response completed", zap.Error(request.Context().Err()))
	}
}

// WriteResponse transfers an Immediate to a ResponseWriter.  A zero status code is written as
// http.StatusOK.  Bodies may be nil, []byte, string, [][]byte, []string, io.WriterTo or io.Reader.
// Readers that are also io.Closers are closed once written.
func WriteResponse(response http.ResponseWriter, r tracing.Immediate) (int64, error) {
	destination := response.Header()
	for k, values := range r.Header {
		for _, v := range values {
			destination.Add(k, v)
		}
	}

	code := r.StatusCode
	if code == 0 {
		code = http.StatusOK
	}

	response.WriteHeader(code)
	return writeBody(response, r.Body)
}

func writeBody(w io.Writer, body interface{}) (int64, error) {
	if closer, ok := body.(io.Closer); ok {
		defer closer.Close()
	}

	switch v := body.(type) {
	case nil:
		return 0, nil

	case []byte:
		n, err := w.Write(v)
		return int64(n), err

	case string:
		n, err := io.WriteString(w, v)
		return int64(n), err

	case [][]byte:
		var total int64
		for _, chunk := range v {
			n, err := w.Write(chunk)
			total += int64(n)
			if err != nil {
				return total, err
			}
		}

		return total, nil

	case []string:
		var total int64
		for _, chunk := range v {
			n, err := io.WriteString(w, chunk)
			total += int64(n)
			if err != nil {
				return total, err
			}
		}

		return total, nil

	case io.WriterTo:
		return v.WriteTo(w)

	case io.Reader:
		return io.Copy(w, v)

	default:
		return 0, fmt.Errorf("%w: %T", ErrUnsupportedBody, body)
	}
}
