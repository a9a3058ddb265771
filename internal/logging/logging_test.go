package logging

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"amity/internal/core"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"INFO":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"":      zapcore.InfoLevel,
		"noisy": zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestNew(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		logger, err := New("warn", format, "amity")
		if err != nil {
			t.Fatalf("new %s: %v", format, err)
		}
		if logger.Core().Enabled(zapcore.InfoLevel) {
			t.Fatalf("%s logger should not log info at warn level", format)
		}
		if !logger.Core().Enabled(zapcore.WarnLevel) {
			t.Fatalf("%s logger should log warn", format)
		}
	}
}

func TestAdaptPassesFields(t *testing.T) {
	obsCore, logs := observer.New(zapcore.DebugLevel)
	logger := Adapt(zap.New(obsCore))
	logger.Debug("debugging", "k", 1)
	logger.Info("room allocated", "person_id", "s1", "room", "BLUE")
	logger.Warn("import record skipped", "line", 3)
	logger.Error("load state failed", "name", "default_db")

	if logs.Len() != 4 {
		t.Fatalf("expected 4 entries, got %d", logs.Len())
	}
	entry := logs.FilterMessage("room allocated").All()
	if len(entry) != 1 || entry[0].Level != zapcore.InfoLevel {
		t.Fatalf("unexpected entries %+v", entry)
	}
	fields := entry[0].ContextMap()
	if fields["person_id"] != "s1" || fields["room"] != "BLUE" {
		t.Fatalf("unexpected fields %v", fields)
	}
	if logs.FilterLevelExact(zapcore.ErrorLevel).Len() != 1 {
		t.Fatalf("expected one error entry")
	}
}

func TestAdaptDrivesServiceEvents(t *testing.T) {
	obsCore, logs := observer.New(zapcore.InfoLevel)
	svc := core.NewInMemoryService(core.NewDefaultRulesEngine(), core.WithLogger(Adapt(zap.New(obsCore))))
	ctx := context.Background()
	if _, err := svc.CreateRoom(ctx, "Blue", core.RoomTypeOffice); err != nil {
		t.Fatalf("create room: %v", err)
	}
	if _, err := svc.AddPerson(ctx, core.NewPerson{ID: "f1", FirstName: "Ann", LastName: "Lee", Role: core.RoleStaff}); err != nil {
		t.Fatalf("add person: %v", err)
	}
	if logs.FilterMessage("room allocated").Len() != 1 {
		t.Fatalf("expected a room allocated entry, got %v", logs.All())
	}
}

func TestAdaptNil(t *testing.T) {
	Adapt(nil).Info("ignored")
}
