// Package importer reads people files for bulk loading.
//
// Each non-blank line has the form
//
//	<id> <first_name> <last_name> <ROLE> [WANTS_ACCOMMODATION]
//
// Lines starting with # are comments.
package importer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"amity/pkg/domain"
)

// ErrMalformedLine marks a line that does not follow the people file format.
var ErrMalformedLine = errors.New("malformed line")

// Record is one parsed person line.
type Record struct {
	Line               int
	ID                 string
	FirstName          string
	LastName           string
	Role               domain.Role
	WantsAccommodation bool
}

// LineError describes a skipped line.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e LineError) Unwrap() error { return e.Err }

// Parse reads records from r. Malformed lines are skipped and returned as
// LineErrors; the error result is reserved for read failures.
func Parse(r io.Reader) ([]Record, []LineError, error) {
	var (
		records []Record
		skipped []LineError
	)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		rec, err := parseLine(text)
		if err != nil {
			skipped = append(skipped, LineError{Line: line, Text: text, Err: err})
			continue
		}
		rec.Line = line
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, skipped, fmt.Errorf("read people: %w", err)
	}
	return records, skipped, nil
}

func parseLine(text string) (Record, error) {
	fields := strings.Fields(text)
	if len(fields) < 4 || len(fields) > 5 {
		return Record{}, fmt.Errorf("%w: expected 4 or 5 fields, got %d", ErrMalformedLine, len(fields))
	}
	role, err := domain.ParseRole(fields[3])
	if err != nil {
		return Record{}, err
	}
	rec := Record{ID: fields[0], FirstName: fields[1], LastName: fields[2], Role: role}
	if len(fields) == 5 {
		wants, err := ParseWants(fields[4])
		if err != nil {
			return Record{}, err
		}
		rec.WantsAccommodation = wants
	}
	return rec, nil
}

// ParseWants interprets an accommodation flag value.
func ParseWants(raw string) (bool, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "Y", "YES", "TRUE":
		return true, nil
	case "N", "NO", "FALSE":
		return false, nil
	default:
		return false, fmt.Errorf("%w: accommodation flag %q", ErrMalformedLine, raw)
	}
}
