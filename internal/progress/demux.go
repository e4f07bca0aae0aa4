// Package progress parses heterogeneous subprocess output into normalized
// progress updates.
package progress

import "bytes"

// ScanLines is a bufio.SplitFunc that splits on '\n', '\r' or "\r\n".
// Carriage returns matter because progress bars redraw lines with bare CRs.
// A trailing partial line is buffered until more input or EOF arrives.
func ScanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		advance = i + 1
		if data[i] == '\r' {
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					advance++
				}
			} else if !atEOF {
				// The terminator may be the first half of a "\r\n" pair
				// split across chunks; wait for the next byte.
				return 0, nil, nil
			}
		}
		return advance, data[0:i], nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
