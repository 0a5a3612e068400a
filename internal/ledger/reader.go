// Package ledger reads a Splitwise-style expense export: five metadata
// columns followed by one signed share column per participant.
package ledger

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

const (
	colDate = iota
	colDescription
	colCategory
	colCost
	colCurrency
	firstParticipantCol
)

var (
	// ErrMissingHeader is returned when the export header does not start
	// with the expected metadata columns.
	ErrMissingHeader = errors.New("missing ledger header")

	// ErrMalformedRow is returned for a row that cannot be parsed. It
	// aborts the import.
	ErrMalformedRow = errors.New("malformed row")
)

// headerAliases lists the accepted names of the consumed metadata columns.
var headerAliases = map[int][]string{
	colDate:        {"date"},
	colDescription: {"description"},
	colCategory:    {"category", "catégorie"},
	colCost:        {"cost", "coût", "montant"},
}

// summaryPrefixes mark the trailing balance line of an export.
var summaryPrefixes = []string{"total balance", "solde total"}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
}

// Row is one expense line of the export with amounts in cents.
type Row struct {
	// Line is the 1-based record number (the header is 1). Blank lines
	// are not counted.
	Line int

	Date        time.Time
	Description string
	Category    string

	// Cost is the total cost in cents.
	Cost int64

	// Shares holds one signed share in cents per participant, in
	// Export.Participants order.
	Shares []int64
}

// Export is a fully read ledger export.
type Export struct {
	// Participants are the participant column headers in file order.
	Participants []string
	Rows         []Row
}

// RowError reports the record and column a row failed on.
type RowError struct {
	Line   int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d, column %s: %v", e.Line, e.Column, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Read reads the whole export into memory. Any malformed row fails the
// read.
func Read(r io.Reader) (*Export, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	data = decode(data)

	records, err := gocsv.LazyCSVReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrMissingHeader)
	}

	header := records[0]
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	export := &Export{
		Participants: make([]string, 0, len(header)-firstParticipantCol),
		Rows:         make([]Row, 0, len(records)-1),
	}
	for _, name := range header[firstParticipantCol:] {
		export.Participants = append(export.Participants, strings.TrimSpace(name))
	}

	for i, record := range records[1:] {
		line := i + 2
		if isSummary(record) {
			continue
		}
		row, err := parseRow(record, header, line)
		if err != nil {
			return nil, err
		}
		export.Rows = append(export.Rows, *row)
	}

	return export, nil
}

// decode converts a Windows-1252 export to UTF-8. UTF-8 input only loses
// its byte order mark.
func decode(data []byte) []byte {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return data
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return data
	}
	return decoded
}

func checkHeader(header []string) error {
	if len(header) <= firstParticipantCol {
		return fmt.Errorf("%w: expected at least %d columns, got %d",
			ErrMissingHeader, firstParticipantCol+1, len(header))
	}
	for col, aliases := range headerAliases {
		name := strings.ToLower(strings.TrimSpace(header[col]))
		if !contains(aliases, name) {
			return fmt.Errorf("%w: column %d is %q, expected %q",
				ErrMissingHeader, col+1, header[col], aliases[0])
		}
	}
	return nil
}

func isSummary(record []string) bool {
	if strings.TrimSpace(record[colDate]) != "" {
		return false
	}
	desc := strings.ToLower(strings.TrimSpace(record[colDescription]))
	for _, prefix := range summaryPrefixes {
		if strings.HasPrefix(desc, prefix) {
			return true
		}
	}
	return false
}

func parseRow(record, header []string, line int) (*Row, error) {
	date, err := parseDate(record[colDate])
	if err != nil {
		return nil, &RowError{Line: line, Column: header[colDate], Err: fmt.Errorf("%w: %v", ErrMalformedRow, err)}
	}

	cost, err := ParseCents(record[colCost])
	if err != nil {
		return nil, &RowError{Line: line, Column: header[colCost], Err: fmt.Errorf("%w: %v", ErrMalformedRow, err)}
	}
	if cost < 0 {
		return nil, &RowError{Line: line, Column: header[colCost], Err: fmt.Errorf("%w: negative cost %d", ErrMalformedRow, cost)}
	}

	row := &Row{
		Line:        line,
		Date:        date,
		Description: strings.TrimSpace(record[colDescription]),
		Category:    strings.TrimSpace(record[colCategory]),
		Cost:        cost,
		Shares:      make([]int64, 0, len(record)-firstParticipantCol),
	}

	for col := firstParticipantCol; col < len(record); col++ {
		share := int64(0)
		if cell := strings.TrimSpace(record[col]); cell != "" {
			share, err = ParseCents(cell)
			if err != nil {
				return nil, &RowError{Line: line, Column: header[col], Err: fmt.Errorf("%w: %v", ErrMalformedRow, err)}
			}
		}
		row.Shares = append(row.Shares, share)
	}

	return row, nil
}

// ParseCents parses a decimal amount such as "-12.34" into cents. Amounts
// with a nonzero digit below the cent are rejected.
func ParseCents(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if !d.Equal(d.Truncate(2)) {
		return 0, fmt.Errorf("invalid amount %q: sub-cent precision", s)
	}
	return d.Shift(2).IntPart(), nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
