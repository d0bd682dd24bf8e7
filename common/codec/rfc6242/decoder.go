// Copyright 2018 Andrew Fort
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package rfc6242

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// FramerFn is the input tokenization function used by a Decoder.
type FramerFn func(d *Decoder, data []byte, atEOF bool) (advance int, token []byte, err error)

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithFramer sets the initial framer of the Decoder.
func WithFramer(f FramerFn) DecoderOption {
	return func(d *Decoder) { d.framer = f }
}

// WithScannerBufferSize sets the decoder scanner buffer capacity, bounding the
// maximum token size. Non-positive sizes leave the default in place.
func WithScannerBufferSize(size int) DecoderOption {
	return func(d *Decoder) {
		if size > 0 {
			d.bufSize = size
		}
	}
}

// Decoder is an RFC6242 transport framing decoder filter.
//
// Decoder operates as an inline filter, taking an io.Reader as input
// and providing io.Reader as well as the low-overhead io.WriterTo.
//
// Read delivers the decoded byte stream without message boundaries, for
// consumption by a streaming XML token decoder. ReadMessage delivers one
// complete framed message at a time, for whole-document parsing.
//
// Decoder is not safe for concurrent use.
type Decoder struct {
	// Input is the input source for the Decoder. The input stream
	// must consist of RFC6242 encoded data according to the current
	// Framer.
	Input io.Reader

	framer FramerFn
	// Pending framer takes effect once the current message's end has been
	// consumed.
	pendingFramer FramerFn

	s  *bufio.Scanner
	pr *io.PipeReader
	pw *io.PipeWriter

	// Number of bytes still to be read from the pipe reader.
	pipedCount int

	chunkDataLeft uint64 // state
	bufSize       int    // config

	// atBoundary is true while the decoder sits exactly on a message
	// boundary: no payload delivered since the last message delimiter was
	// consumed. Governs framer switch deferral and EOF classification.
	atBoundary bool
	// msgEnd is set by a framer when it consumes a message delimiter;
	// cleared by ReadMessage.
	msgEnd bool
}

// NewDecoder creates a new RFC6242 transport framing decoder reading from
// input, configured with any options provided.
func NewDecoder(input io.Reader, options ...DecoderOption) *Decoder {
	d := &Decoder{
		Input:      input,
		framer:     decoderEndOfMessage,
		bufSize:    defaultReaderBufferSize,
		atBoundary: true,
	}
	for _, option := range options {
		option(d)
	}
	d.pr, d.pw = io.Pipe()
	if d.s == nil {
		d.s = bufio.NewScanner(input)
		tmp := make([]byte, d.bufSize)
		d.s.Buffer(tmp, d.bufSize)
	}
	d.s.Split(d.split)
	return d
}

// Read reads from the Decoder's input and copies the decoded data into b,
// implementing io.Reader. Message delimiters are consumed silently.
func (d *Decoder) Read(b []byte) (n int, err error) {
	// Deliver pending data from pipe, if there is any.
	if d.pipedCount > 0 {
		n, err = d.pr.Read(b)
		d.pipedCount -= n
		return
	}
	for d.s.Scan() {
		token := d.s.Bytes()
		if len(token) == 0 {
			// a delimiter with no pending payload; keep scanning
			continue
		}
		if len(token) <= len(b) {
			copy(b, token)
			return len(token), nil
		}
		d.pipedCount = len(token)
		go func() {
			if _, err = d.pw.Write(token); err != nil {
				d.pr.CloseWithError(err) // nolint : gosec
			}
		}()
		n, err = d.pr.Read(b)
		d.pipedCount -= n
		return
	}
	if err = d.s.Err(); err == nil {
		if d.atBoundary {
			err = io.EOF
		} else {
			err = io.ErrUnexpectedEOF
		}
	}
	return
}

// ReadMessage reads and returns the body of the next complete framed message.
// It returns io.EOF when the input is exhausted at a message boundary, and
// io.ErrUnexpectedEOF when the input ends mid-message.
func (d *Decoder) ReadMessage() ([]byte, error) {
	var buf bytes.Buffer
	d.msgEnd = false
	for {
		if !d.s.Scan() {
			if err := d.s.Err(); err != nil {
				return nil, err
			}
			if buf.Len() == 0 && d.atBoundary {
				return nil, io.EOF
			}
			return nil, errors.WithStack(io.ErrUnexpectedEOF)
		}
		buf.Write(d.s.Bytes())
		if d.msgEnd {
			d.msgEnd = false
			return buf.Bytes(), nil
		}
	}
}

// WriteTo reads from the Decoder's input, strips the transport
// encoding and writes the decoded data to w, implementing
// io.WriterTo.
func (d *Decoder) WriteTo(w io.Writer) (n int64, err error) {
	for err == nil && d.s.Scan() {
		b := d.s.Bytes()
		_, err = w.Write(b)
		n += int64(len(b))
	}
	if err == nil {
		if err = d.s.Err(); err == nil && !d.atBoundary {
			err = errors.WithStack(io.ErrUnexpectedEOF)
		}
	}
	return
}

func (d *Decoder) split(b []byte, eof bool) (a int, t []byte, err error) {
	if eof && len(b) == 0 {
		return 0, nil, nil
	}
	return d.framer(d, b, eof)
}

func (d *Decoder) setFramer(f FramerFn) {
	// A switch requested mid-message only takes effect after the current
	// message's delimiter has been consumed. This allows for the sequence:
	// - transport reader delivers complete hello message, i.e. <hello>....</hello>
	// - decoder delivers token (the hello message) to xml decoder
	// - xml decoder delivers decoded hello to application code
	// - application code inspects hello, enables chunked framing and calls the xml decoder
	// - transport reader delivers 'missing' end of message
	if !d.atBoundary {
		d.pendingFramer = f
	} else {
		d.framer = f
	}
}

// endOfMessageSeen records consumption of a message delimiter and promotes
// any pending framer.
func (d *Decoder) endOfMessageSeen() {
	d.atBoundary = true
	d.msgEnd = true
	d.chunkDataLeft = 0
	if d.pendingFramer != nil {
		d.framer = d.pendingFramer
		d.pendingFramer = nil
	}
}

const (
	// RFC6242 section 4.2 defines the "maximum allowed chunk-size".
	rfc6242maximumAllowedChunkSize = 4294967295
	// the length of `rfc6242maximumAllowedChunkSize` in bytes on the wire.
	rfc6242maximumAllowedChunkSizeLength = 10
	// defaultReaderBufferSize is the default read buffer capacity size.
	defaultReaderBufferSize = 65536
)
