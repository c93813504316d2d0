package soundlog

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// File is a sound log opened for aggregation. The file is treated as
// static for the run: it is scanned once to count data rows and once
// more to stream them.
type File struct {
	path      string
	hasHeader bool
	dataRows  int
}

// Open stats the log and counts its data rows. A missing file surfaces
// as an error wrapping fs.ErrNotExist so callers can distinguish "bad
// path" from "bad content".
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = f.Close() }()

	file := &File{path: path}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			if isHeaderLine(line) {
				file.hasHeader = true
				continue
			}
		}
		// Blank lines are invisible to the CSV reader; keep the two
		// passes consistent by not counting them here either.
		if strings.TrimSpace(line) == "" {
			continue
		}
		file.dataRows++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan log: %w", err)
	}
	return file, nil
}

// isHeaderLine reports whether the first field of the line names the
// timestamp column (case-insensitive).
func isHeaderLine(line string) bool {
	field, _, _ := strings.Cut(line, ",")
	return strings.EqualFold(strings.TrimSpace(field), TimestampColumn)
}

// Path returns the log path.
func (f *File) Path() string { return f.path }

// HasHeader reports whether the first line was a header.
func (f *File) HasHeader() bool { return f.hasHeader }

// DataRows returns the number of data rows (header excluded).
func (f *File) DataRows() int { return f.dataRows }

// Batches returns how many batches of batchSize the log splits into.
func (f *File) Batches(batchSize int) int {
	if batchSize <= 0 || f.dataRows == 0 {
		return 0
	}
	return (f.dataRows + batchSize - 1) / batchSize
}

// StreamBatches re-reads the log and calls fn once per batch of up to
// batchSize raw rows, in file order. fn's batch slice is not reused;
// callers may retain it. A non-nil error from fn stops the scan.
func (f *File) StreamBatches(batchSize int, fn func(index int, rows [][]string) error) error {
	if batchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // rows are validated downstream
	reader.ReuseRecord = false

	skipHeader := f.hasHeader
	index := 0
	batch := make([][]string, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := fn(index, batch); err != nil {
			return err
		}
		index++
		batch = make([][]string, 0, batchSize)
		return nil
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				// A malformed line is a row-level failure: hand it to the
				// reducer as-is so it is counted, not a fatal scan error.
				row = []string{}
			} else {
				return fmt.Errorf("read log: %w", err)
			}
		}
		if skipHeader {
			skipHeader = false
			continue
		}
		batch = append(batch, row)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}
