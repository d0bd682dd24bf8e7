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
	"strconv"

	"github.com/pkg/errors"
)

// tokenEOM is the RFC6242 end-of-message delimiter.
var tokenEOM = []byte("]]>]]>")

// decoderEndOfMessage is the end-of-message framer. Payload bytes are emitted
// as they arrive; a token ending at the delimiter marks the message boundary.
func decoderEndOfMessage(d *Decoder, data []byte, atEOF bool) (advance int, token []byte, err error) {
	if i := bytes.Index(data, tokenEOM); i >= 0 {
		d.endOfMessageSeen()
		return i + len(tokenEOM), data[:i], nil
	}
	if atEOF {
		// unterminated trailing payload
		d.atBoundary = false
		return len(data), data, nil
	}
	// Hold back any trailing bytes that could begin a delimiter.
	if emit := len(data) - eomOverlap(data); emit > 0 {
		d.atBoundary = false
		return emit, data[:emit], nil
	}
	return 0, nil, nil
}

// eomOverlap reports the length of the longest suffix of data that is a
// proper prefix of the end-of-message delimiter.
func eomOverlap(data []byte) int {
	max := len(tokenEOM) - 1
	if len(data) < max {
		max = len(data)
	}
	for l := max; l > 0; l-- {
		if bytes.HasSuffix(data, tokenEOM[:l]) {
			return l
		}
	}
	return 0
}

// decoderChunked is the chunked framer of RFC6242 section 4.2. Chunk headers
// and the end-of-chunks marker are consumed silently; chunk payload is
// emitted as it arrives. An empty token marks the end-of-chunks boundary.
func decoderChunked(d *Decoder, data []byte, atEOF bool) (advance int, token []byte, err error) {
	if d.chunkDataLeft > 0 {
		n := uint64(len(data))
		if n > d.chunkDataLeft {
			n = d.chunkDataLeft
		}
		d.chunkDataLeft -= n
		d.atBoundary = false
		return int(n), data[:n], nil
	}

	if data[0] != '\n' {
		return 0, nil, errors.New("invalid chunk header")
	}
	if len(data) < 2 {
		return chunkNeedMore(atEOF)
	}
	if data[1] != '#' {
		return 0, nil, errors.New("invalid chunk header")
	}
	if len(data) < 3 {
		return chunkNeedMore(atEOF)
	}

	if data[2] == '#' {
		// end-of-chunks: \n##\n
		if len(data) < 4 {
			return chunkNeedMore(atEOF)
		}
		if data[3] != '\n' {
			return 0, nil, errors.New("invalid chunk header")
		}
		d.endOfMessageSeen()
		return 4, data[:0], nil
	}

	// chunk header: \n#<chunk-size>\n
	i := 2
	for ; i < len(data) && data[i] != '\n'; i++ {
		if data[i] < '0' || data[i] > '9' {
			return 0, nil, errors.New("invalid chunk header")
		}
	}
	digits := i - 2
	if i == len(data) {
		if digits > rfc6242maximumAllowedChunkSizeLength {
			return 0, nil, errors.New("no valid chunk-size detected")
		}
		return chunkNeedMore(atEOF)
	}
	if digits == 0 {
		return 0, nil, errors.New("invalid chunk header")
	}
	if digits > rfc6242maximumAllowedChunkSizeLength {
		return 0, nil, bufio.ErrTooLong
	}
	size, perr := strconv.ParseUint(string(data[2:i]), 10, 64)
	if perr != nil {
		return 0, nil, errors.Wrap(perr, "invalid chunk header")
	}
	if size == 0 {
		return 0, nil, errors.New("invalid chunk header")
	}
	if size > rfc6242maximumAllowedChunkSize {
		return 0, nil, errors.New("chunk size larger than maximum")
	}
	d.chunkDataLeft = size
	d.atBoundary = false
	return i + 1, nil, nil
}

func chunkNeedMore(atEOF bool) (int, []byte, error) {
	if atEOF {
		return 0, nil, errors.WithStack(io.ErrUnexpectedEOF)
	}
	return 0, nil, nil
}
