package binance

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Record is one CSV row keyed by its (normalized) column name.
type Record map[string]string

var nonLetterRun = regexp.MustCompile(`[^a-zA-Z]+`)

// NormalizeColumn snake-cases a statement header: every run of non-letters
// becomes a single underscore, the result is lower-cased and trailing
// underscores are trimmed. "UTC_Time" becomes "utc_time", "User ID" becomes
// "user_id".
func NormalizeColumn(name string) string {
	return strings.TrimRight(strings.ToLower(nonLetterRun.ReplaceAllString(name, "_")), "_")
}

// ReadRecords reads every row of a Binance export. Statement headers are
// normalized with NormalizeColumn; trade headers are used verbatim. Trade
// exports list the newest fill first, so their rows are reversed into
// chronological order.
func ReadRecords(kind FileKind, r io.Reader) ([]Record, error) {
	if kind == KindUnknown {
		return nil, errors.New("cannot read records of an unknown file kind")
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s header: %w", kind, err)
	}

	columns := make([]string, len(header))
	for i, column := range header {
		column = strings.TrimPrefix(column, "\ufeff")
		if kind == KindStatement {
			column = NormalizeColumn(column)
		}
		columns[i] = column
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s row %d: %w", kind, line, err)
		}

		record := make(Record, len(columns))
		for i, column := range columns {
			if i < len(row) {
				record[column] = row[i]
			}
		}
		records = append(records, record)
	}

	if kind == KindTrades {
		for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
			records[i], records[j] = records[j], records[i]
		}
	}

	return records, nil
}
