package core

import (
	"bufio"
	"io"
	"iter"
	"strings"
)

const (
	readBufferSize = 64 * 1024
	// maxLineSize allows very long single-line sequences.
	maxLineSize = 64 * 1024 * 1024
)

// SplitRecords reads r and yields one RawRecord per '>' header line.
//
// The sequence is lazy and forward-only: r is consumed once, as the caller
// iterates. Blank lines and anything before the first header are skipped.
// Empty input yields nothing. A read failure is yielded once as a
// *SourceError and ends the sequence; the record being built when the
// failure happened is discarded.
func SplitRecords(r io.Reader) iter.Seq2[RawRecord, error] {
	return func(yield func(RawRecord, error) bool) {
		br := bufio.NewReaderSize(r, readBufferSize)
		if err := skipBOM(br); err != nil {
			yield(RawRecord{}, &SourceError{Op: "read", Err: err})
			return
		}

		sc := bufio.NewScanner(br)
		sc.Buffer(make([]byte, readBufferSize), maxLineSize)
		sc.Split(scanLines)

		var (
			current *RawRecord
			index   int
		)
		for sc.Scan() {
			line := sanitizeLine(sc.Text())

			if strings.HasPrefix(line, ">") {
				if current != nil && !yield(*current, nil) {
					return
				}
				index++
				current = &RawRecord{Header: line[1:], Index: index}
				continue
			}

			if current == nil || strings.TrimSpace(line) == "" {
				continue
			}
			current.Lines = append(current.Lines, line)
		}

		if err := sc.Err(); err != nil {
			yield(RawRecord{}, &SourceError{Op: "read", Err: err})
			return
		}
		if current != nil {
			yield(*current, nil)
		}
	}
}
