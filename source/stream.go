// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"errors"
	"io"
	"os"
	"sync"
	"time"
)

// Stream is an Endpoint over a readable file and a separate writer.
// OpenStdio builds one over the process's standard streams; tests
// build one over os.Pipe.
type Stream struct {
	reader *os.File
	writer io.Writer
	name   string

	// restore undoes terminal and descriptor mode changes made when the
	// stream was opened. Nil when nothing was changed.
	restore func() error

	closeOnce  sync.Once
	closeError error
}

// NewStream returns a Stream reading from reader and writing to writer.
// Close closes reader but leaves writer open.
func NewStream(reader *os.File, writer io.Writer, name string) *Stream {
	return &Stream{reader: reader, writer: writer, name: name}
}

// Read reads whatever bytes are available. Returns io.EOF when the
// producer has closed its end.
func (s *Stream) Read(buffer []byte) (int, error) {
	return s.reader.Read(buffer)
}

// Write writes data to the output side.
func (s *Stream) Write(data []byte) (int, error) {
	return s.writer.Write(data)
}

// SetReadDeadline bounds Read when the reader is pollable.
func (s *Stream) SetReadDeadline(deadline time.Time) error {
	return s.reader.SetReadDeadline(deadline)
}

// Close restores any terminal state and closes the reader.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		var restoreError error
		if s.restore != nil {
			restoreError = s.restore()
		}
		s.closeError = errors.Join(restoreError, s.reader.Close())
	})
	return s.closeError
}

func (s *Stream) String() string { return s.name }
