// Package soundlog reads and validates the 8-column CSV logs written by
// the Yamcam / YSP sound profiler add-ons.
package soundlog

import (
	"strings"
	"time"

	"github.com/cecat/soundviz/internal/model"
)

// Column positions of the fixed log schema. The order is part of the log
// format and must not change.
const (
	colTimestamp = iota
	colCamera
	colGroup
	colGroupScore
	colClass
	colClassScore
	colGroupStart
	colGroupEnd
	columnCount
)

// TimestampColumn is the header name of the first column; a first line
// whose first field matches it (case-insensitive) is treated as a header.
const TimestampColumn = "datetime"

// timestampLayouts are tried in order. The profiler writes the first
// form; the rest keep older logs and hand-edited files readable.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// ParseTimestamp parses a log timestamp under the lenient grammar.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Normalize validates one raw row and, if valid, returns its normalized
// form. A row is valid iff its timestamp parses; every other field may be
// empty. Short rows are padded with empty fields, extra fields ignored.
func Normalize(fields []string) (model.Record, bool) {
	field := func(i int) string {
		if i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}

	ts, ok := ParseTimestamp(field(colTimestamp))
	if !ok {
		return model.Record{}, false
	}

	classGroup, className := model.SplitClassPath(field(colClass))
	return model.Record{
		Timestamp:  ts,
		Hour:       ts.Truncate(time.Hour),
		Camera:     field(colCamera),
		Group:      field(colGroup),
		GroupScore: model.ParseScore(field(colGroupScore)),
		ClassGroup: classGroup,
		ClassName:  className,
		ClassScore: model.ParseScore(field(colClassScore)),
		GroupStart: field(colGroupStart),
		GroupEnd:   field(colGroupEnd),
	}, true
}
