package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/viant/afs"

	"amity/internal/core"
	"amity/pkg/domain"
)

// Loader reads people files from any location afs understands: local
// paths, file:// and mem:// URLs, or registered cloud schemes.
type Loader struct {
	fs afs.Service
}

// NewLoader returns a Loader on the default afs service.
func NewLoader() *Loader {
	return &Loader{fs: afs.New()}
}

// NewLoaderWith uses the supplied afs service.
func NewLoaderWith(fs afs.Service) *Loader {
	return &Loader{fs: fs}
}

// Load downloads and parses source.
func (l *Loader) Load(ctx context.Context, source string) ([]Record, []LineError, error) {
	if strings.TrimSpace(source) == "" {
		return nil, nil, fmt.Errorf("people file is required")
	}
	exists, err := l.fs.Exists(ctx, source)
	if err != nil {
		return nil, nil, fmt.Errorf("check %s: %w", source, err)
	}
	if !exists {
		return nil, nil, fmt.Errorf("people file %s not found", source)
	}
	data, err := l.fs.DownloadWithURL(ctx, source)
	if err != nil {
		return nil, nil, fmt.Errorf("download %s: %w", source, err)
	}
	return Parse(bytes.NewReader(data))
}

// PersonAdder is the part of the allocation service the importer needs.
type PersonAdder interface {
	AddPerson(ctx context.Context, in core.NewPerson) (core.Placement, error)
}

// Summary reports the outcome of an import.
type Summary struct {
	Placements []core.Placement
	Warnings   []error
}

// Import adds every record in order. Rejected records, such as duplicates,
// become warnings and do not stop the import; a cancelled context does.
func Import(ctx context.Context, adder PersonAdder, records []Record, logger core.Logger) (Summary, error) {
	var summary Summary
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		placement, err := adder.AddPerson(ctx, core.NewPerson{
			ID:                 rec.ID,
			FirstName:          rec.FirstName,
			LastName:           rec.LastName,
			Role:               rec.Role,
			WantsAccommodation: rec.WantsAccommodation,
		})
		if err != nil {
			var violation domain.RuleViolationError
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return summary, err
			}
			warn := fmt.Errorf("line %d: %w", rec.Line, err)
			if errors.As(err, &violation) {
				warn = fmt.Errorf("line %d: rejected by rules: %w", rec.Line, err)
			}
			summary.Warnings = append(summary.Warnings, warn)
			if logger != nil {
				logger.Warn("import record skipped", "line", rec.Line, "person_id", rec.ID, "error", err)
			}
			continue
		}
		summary.Placements = append(summary.Placements, placement)
	}
	return summary, nil
}
