package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/viant/afs"

	"amity/internal/core"
	"amity/pkg/domain"
)

const peopleFile = `# id first last role [wants]
f1 OLUWAFEMI SULE FELLOW Y
s1 DOMINIC WALTERS STUDENT Y

f2 SIMON PATTERSON F
s2 MARI LAWRENCE S N
bad line
s3 LEIGH RILEY JANITOR
s4 TANA LOPEZ S MAYBE
`

func TestParse(t *testing.T) {
	records, skipped, err := Parse(strings.NewReader(peopleFile))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d: %+v", len(records), records)
	}
	first := records[0]
	if first.ID != "f1" || first.FirstName != "OLUWAFEMI" || first.Role != domain.RoleStaff || !first.WantsAccommodation || first.Line != 2 {
		t.Fatalf("unexpected first record %+v", first)
	}
	if records[2].Role != domain.RoleStaff || records[2].WantsAccommodation {
		t.Fatalf("unexpected third record %+v", records[2])
	}
	if records[3].Role != domain.RoleStudent || records[3].WantsAccommodation || records[3].Line != 6 {
		t.Fatalf("unexpected fourth record %+v", records[3])
	}
	if len(skipped) != 3 {
		t.Fatalf("expected 3 skipped lines, got %+v", skipped)
	}
	if skipped[0].Line != 7 || !errors.Is(skipped[0], ErrMalformedLine) {
		t.Fatalf("unexpected skip %+v", skipped[0])
	}
	if !errors.Is(skipped[1], domain.ErrInvalidRole) {
		t.Fatalf("expected invalid role, got %v", skipped[1])
	}
	if !errors.Is(skipped[2], ErrMalformedLine) || !strings.Contains(skipped[2].Error(), "line 9") {
		t.Fatalf("unexpected wants error %v", skipped[2])
	}
}

func TestParseWants(t *testing.T) {
	for raw, want := range map[string]bool{"y": true, "YES": true, "true": true, "N": false, "no": false, "False": false} {
		got, err := ParseWants(raw)
		if err != nil || got != want {
			t.Fatalf("ParseWants(%q) = %v, %v", raw, got, err)
		}
	}
	if _, err := ParseWants("1"); !errors.Is(err, ErrMalformedLine) {
		t.Fatalf("expected malformed error, got %v", err)
	}
}

func TestLoaderReadsLocalAndMemoryURLs(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "people.txt")
	if err := os.WriteFile(path, []byte(peopleFile), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	loader := NewLoader()
	records, skipped, err := loader.Load(ctx, path)
	if err != nil || len(records) != 4 || len(skipped) != 3 {
		t.Fatalf("load local: %d %d %v", len(records), len(skipped), err)
	}

	fs := afs.New()
	url := "mem://localhost/amity/people.txt"
	if err := fs.Upload(ctx, url, 0o644, strings.NewReader("x1 ANN LEE STAFF\n")); err != nil {
		t.Fatalf("upload: %v", err)
	}
	records, _, err = NewLoaderWith(fs).Load(ctx, url)
	if err != nil || len(records) != 1 || records[0].ID != "x1" {
		t.Fatalf("load mem: %+v %v", records, err)
	}

	if _, _, err := loader.Load(ctx, filepath.Join(t.TempDir(), "missing.txt")); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
	if _, _, err := loader.Load(ctx, " "); err == nil {
		t.Fatalf("expected error for blank source")
	}
}

type recordingLogger struct{ warns []string }

func (*recordingLogger) Debug(string, ...any)        {}
func (*recordingLogger) Info(string, ...any)         {}
func (l *recordingLogger) Warn(msg string, _ ...any) { l.warns = append(l.warns, msg) }
func (*recordingLogger) Error(string, ...any)        {}

func TestImportIntoService(t *testing.T) {
	ctx := context.Background()
	svc := core.NewInMemoryService(core.NewDefaultRulesEngine(), core.WithSeed(7))
	if _, err := svc.CreateRoom(ctx, "Blue", core.RoomTypeOffice); err != nil {
		t.Fatalf("create office: %v", err)
	}
	if _, err := svc.CreateRoom(ctx, "Ruby", core.RoomTypeLivingSpace); err != nil {
		t.Fatalf("create living: %v", err)
	}
	records, _, err := Parse(strings.NewReader(peopleFile + "f1 DUPLICATE PERSON STAFF\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	logger := &recordingLogger{}
	summary, err := Import(ctx, svc, records, logger)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(summary.Placements) != 4 {
		t.Fatalf("expected 4 placements, got %d", len(summary.Placements))
	}
	if len(summary.Warnings) != 1 || !errors.Is(summary.Warnings[0], domain.ErrDuplicatePerson) {
		t.Fatalf("expected duplicate warning, got %v", summary.Warnings)
	}
	if len(logger.warns) != 1 {
		t.Fatalf("expected one logged warning, got %v", logger.warns)
	}
	student, ok := svc.FindPerson(ctx, "s1")
	office, _ := student.RoomOf(core.RoomTypeOffice)
	living, _ := student.RoomOf(core.RoomTypeLivingSpace)
	if !ok || office != "Blue" || living != "Ruby" {
		t.Fatalf("unexpected student %+v", student)
	}
	fellow, ok := svc.FindPerson(ctx, "f1")
	if !ok || fellow.WantsAccommodation || fellow.LivingRoom != nil {
		t.Fatalf("staff must not get accommodation: %+v", fellow)
	}
}

func TestImportStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := core.NewInMemoryService(core.NewDefaultRulesEngine())
	summary, err := Import(ctx, svc, []Record{{ID: "a", FirstName: "A", LastName: "B", Role: domain.RoleStaff}}, nil)
	if !errors.Is(err, context.Canceled) || len(summary.Placements) != 0 {
		t.Fatalf("expected cancellation, got %v %+v", err, summary)
	}
}
