package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/Sunspark/MauroDataCollector/internal/normalize"
	"github.com/Sunspark/MauroDataCollector/pkg/mauro"
)

func newCSVReader(content []byte) *csv.Reader {
	br := stripUTF8BOM(bufio.NewReader(bytes.NewReader(content)))
	r := csv.NewReader(br)
	r.TrimLeadingSpace = false
	return r
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}

// readHeader reads and trims the header and fixes the record width to it.
func readHeader(file string, r *csv.Reader) ([]string, error) {
	h, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: missing header: %w", file, mauro.ErrFileStructure)
		}
		return nil, fmt.Errorf("%s: %v: %w", file, err, mauro.ErrFileStructure)
	}
	h = normalize.CleanHeader(h)
	for _, cell := range h {
		if !utf8.ValidString(cell) {
			return nil, fmt.Errorf("%s: invalid header encoding: %w", file, mauro.ErrFileStructure)
		}
	}
	r.FieldsPerRecord = len(h)
	return h, nil
}

// readRecord returns the next record, io.EOF at the end, or a file-fatal error.
func readRecord(file string, index int, width int, r *csv.Reader) ([]string, error) {
	record, err := r.Read()
	if err == nil || errors.Is(err, io.EOF) {
		return record, err
	}
	if errors.Is(err, csv.ErrFieldCount) {
		return nil, &mauro.FieldCountError{File: file, Row: index, Want: width, Got: len(record)}
	}
	return nil, fmt.Errorf("%s: row %d: %v: %w", file, index, err, mauro.ErrFileStructure)
}
