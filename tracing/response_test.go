// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package tracing

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type panicLen struct{}

func (panicLen) Len() int { panic("no length") }

type brokenSeeker struct{}

func (brokenSeeker) Seek(int64, int) (int64, error) { return 0, errors.New("seek failed") }

func TestContentLength(t *testing.T) {
	var (
		assert = assert.New(t)

		partial = strings.NewReader("0123456789")
		seeker  = io.NewSectionReader(strings.NewReader("abcdefgh"), 0, 8)

		testData = []struct {
			body     interface{}
			expected int64
			ok       bool
		}{
			{nil, 0, true},
			{[]byte("hello"), 5, true},
			{[]byte{}, 0, true},
			{"hello world", 11, true},
			{[][]byte{[]byte("ab"), []byte("cde"), nil}, 5, true},
			{[]string{"ab", "", "cdef"}, 6, true},
			{bytes.NewBufferString("buffered"), 8, true},
			{seeker, 8, true},
			{panicLen{}, 0, false},
			{brokenSeeker{}, 0, false},
			{123, 0, false},
			{struct{}{}, 0, false},
		}
	)

	for i, record := range testData {
		actual, ok := ContentLength(record.body)
		assert.Equal(record.ok, ok, "record %d", i)
		assert.Equal(record.expected, actual, "record %d", i)
	}

	partial.Seek(4, io.SeekStart)
	actual, ok := ContentLength(partial)
	assert.True(ok)
	assert.Equal(int64(6), actual)
	assert.Equal(6, partial.Len())
}

func testSeekLengthRestoresOffset(t *testing.T) {
	var (
		assert = assert.New(t)
		s      = io.NewSectionReader(strings.NewReader("abcdefgh"), 0, 8)
	)

	_, err := s.Seek(3, io.SeekStart)
	assert.NoError(err)

	n, ok := seekLength(s)
	assert.True(ok)
	assert.Equal(int64(5), n)

	offset, err := s.Seek(0, io.SeekCurrent)
	assert.NoError(err)
	assert.Equal(int64(3), offset)
}

func TestSeekLength(t *testing.T) {
	t.Run("RestoresOffset", testSeekLengthRestoresOffset)
}

func TestHandlerFunc(t *testing.T) {
	var (
		assert   = assert.New(t)
		expected = Immediate{StatusCode: 201}
		request  = testRequest()
	)

	actual, err := HandlerFunc(func(_ context.Context, r *Request) (Response, error) {
		assert.True(r == request)
		return expected, nil
	}).Handle(context.Background(), request)

	assert.NoError(err)
	assert.Equal(expected, actual)
}
