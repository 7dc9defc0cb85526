package tsl

import (
	"bufio"
	"bytes"
)

// Splitter tokenizes reader output into lines. It uses the signature of
// bufio.SplitFunc so it can be directly used with bufio.Scanner.
//
// The TSL 1128 terminates every line with CRLF. Lone CR or LF inside a
// line is left untouched; only complete CRLF sequences delimit tokens.
//
// The atEOF parameter indicates whether any more data will be available.
// When true, any remaining data is returned as the final token.
func Splitter(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.Index(data, []byte(CRLF)); i >= 0 {
		return i + len(CRLF), data[0:i], nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

var _ bufio.SplitFunc = Splitter
