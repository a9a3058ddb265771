package report

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	blobcore "amity/internal/blob/core"
	"amity/internal/core"
	"amity/internal/blob"
)

func memoryStore(t *testing.T) blobcore.Store {
	t.Helper()
	store, err := blob.Open(context.Background(), blob.Options{Driver: blobcore.DriverMemory})
	if err != nil {
		t.Fatalf("open memory store: %v", err)
	}
	return store
}

func sampleAllocations() []core.RoomAllocation {
	return []core.RoomAllocation{
		{Room: "BLUE", Type: core.RoomTypeOffice, Capacity: 6, Occupants: []string{"Ann Lee", "Bob Ray"}},
		{Room: "RUBY", Type: core.RoomTypeLivingSpace, Capacity: 4, Occupants: []string{}},
	}
}

func sampleUnallocated() []core.UnallocatedPerson {
	return []core.UnallocatedPerson{
		{ID: "s1", FullName: "Cid Moe", Role: core.RoleStudent, Missing: []core.RoomType{core.RoomTypeOffice, core.RoomTypeLivingSpace}},
	}
}

func TestFormatFor(t *testing.T) {
	cases := map[string]Format{
		"out.xlsx":      FormatXLSX,
		"OUT.XLSX":      FormatXLSX,
		"out.txt":       FormatText,
		"allocations":   FormatText,
		"dir/file.xlsx": FormatXLSX,
	}
	for name, want := range cases {
		if got := FormatFor(name); got != want {
			t.Fatalf("FormatFor(%q) = %s, want %s", name, got, want)
		}
	}
}

func TestWriteAllocations(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAllocations(&buf, sampleAllocations()); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"BLUE (OFFICE 2/6)", "Ann Lee, Bob Ray", "RUBY (LIVING_SPACE 0/4)", "(empty)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	buf.Reset()
	if err := WriteAllocations(&buf, nil); err != nil || !strings.Contains(buf.String(), "No rooms") {
		t.Fatalf("unexpected empty output %q %v", buf.String(), err)
	}
}

func TestWriteRoom(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRoom(&buf, sampleAllocations()[0]); err != nil {
		t.Fatalf("write: %v", err)
	}
	if want := "BLUE (OFFICE 2/6)\n  Ann Lee\n  Bob Ray\n"; buf.String() != want {
		t.Fatalf("got %q want %q", buf.String(), want)
	}
}

func TestWriteUnallocated(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteUnallocated(&buf, sampleUnallocated()); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "ID") {
		t.Fatalf("unexpected table:\n%s", buf.String())
	}
	if !strings.Contains(lines[1], "Cid Moe") || !strings.Contains(lines[1], "OFFICE, LIVING_SPACE") {
		t.Fatalf("unexpected row %q", lines[1])
	}
	buf.Reset()
	if err := WriteUnallocated(&buf, nil); err != nil || !strings.Contains(buf.String(), "Everyone is allocated") {
		t.Fatalf("unexpected empty output %q %v", buf.String(), err)
	}
}

func TestAllocationsWorkbook(t *testing.T) {
	data, err := AllocationsWorkbook(sampleAllocations())
	if err != nil {
		t.Fatalf("workbook: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != allocationsSheet {
		t.Fatalf("unexpected sheets %v", sheets)
	}
	rows, err := f.GetRows(allocationsSheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 || rows[0][0] != "Room" || rows[1][0] != "BLUE" || rows[1][3] != "Ann Lee, Bob Ray" || rows[2][1] != "LIVING_SPACE" {
		t.Fatalf("unexpected rows %v", rows)
	}
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	store := memoryStore(t)

	info, err := PublishAllocations(ctx, store, "allocations.txt", sampleAllocations())
	if err != nil {
		t.Fatalf("publish text: %v", err)
	}
	if !strings.HasPrefix(info.ContentType, "text/plain") {
		t.Fatalf("unexpected content type %q", info.ContentType)
	}
	_, rc, err := store.Get(ctx, "allocations.txt")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if !strings.Contains(string(body), "BLUE") {
		t.Fatalf("unexpected body %q", body)
	}

	// republishing the same name replaces the previous output
	if _, err := PublishAllocations(ctx, store, "allocations.txt", nil); err != nil {
		t.Fatalf("republish: %v", err)
	}

	info, err = PublishUnallocated(ctx, store, "unallocated.xlsx", sampleUnallocated())
	if err != nil {
		t.Fatalf("publish xlsx: %v", err)
	}
	if info.ContentType != contentTypeXLSX {
		t.Fatalf("unexpected content type %q", info.ContentType)
	}
	_, rc, err = store.Get(ctx, "unallocated.xlsx")
	if err != nil {
		t.Fatalf("get xlsx: %v", err)
	}
	defer rc.Close()
	f, err := excelize.OpenReader(rc)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(unallocatedSheet)
	if err != nil || len(rows) != 2 || rows[1][1] != "Cid Moe" {
		t.Fatalf("unexpected rows %v %v", rows, err)
	}

	if _, err := PublishAllocations(ctx, nil, "x.txt", nil); err == nil {
		t.Fatalf("expected error without store")
	}
	if _, err := PublishAllocations(ctx, store, " ", nil); err == nil {
		t.Fatalf("expected error for blank name")
	}
}

type failingStore struct{ blobcore.Store }

func (failingStore) Put(context.Context, string, io.Reader, blobcore.PutOptions) (blobcore.Info, error) {
	return blobcore.Info{}, errors.New("disk full")
}

func TestPublishWrapsStoreErrors(t *testing.T) {
	_, err := PublishAllocations(context.Background(), failingStore{}, "a.txt", sampleAllocations())
	if err == nil || !strings.Contains(err.Error(), "disk full") || !strings.Contains(err.Error(), "a.txt") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestShowAndListing(t *testing.T) {
	ctx := context.Background()
	store := memoryStore(t)
	if _, err := PublishAllocations(ctx, store, "allocations.txt", sampleAllocations()); err != nil {
		t.Fatalf("publish text: %v", err)
	}
	if _, err := PublishUnallocated(ctx, store, "unallocated.xlsx", sampleUnallocated()); err != nil {
		t.Fatalf("publish xlsx: %v", err)
	}

	var buf bytes.Buffer
	if _, err := Show(ctx, store, "allocations.txt", &buf); err != nil {
		t.Fatalf("show text: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "BLUE (OFFICE 2/6)") {
		t.Fatalf("unexpected text %q", buf.String())
	}

	buf.Reset()
	if _, err := Show(ctx, store, "unallocated.xlsx", &buf); err != nil {
		t.Fatalf("show xlsx: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "[Unallocated]") || !strings.Contains(out, "s1\tCid Moe\tSTUDENT") {
		t.Fatalf("unexpected workbook text %q", out)
	}

	if _, err := Show(ctx, store, "missing.txt", &buf); !errors.Is(err, blobcore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := Show(ctx, nil, "allocations.txt", &buf); err == nil {
		t.Fatalf("expected error without store")
	}

	infos, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	buf.Reset()
	if err := WriteListing(&buf, infos); err != nil {
		t.Fatalf("listing: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "NAME") || !strings.HasPrefix(lines[1], "allocations.txt") || !strings.HasPrefix(lines[2], "unallocated.xlsx") {
		t.Fatalf("unexpected listing %q", buf.String())
	}

	buf.Reset()
	if err := WriteListing(&buf, nil); err != nil || buf.String() != "No reports written\n" {
		t.Fatalf("unexpected empty listing %q %v", buf.String(), err)
	}
}
