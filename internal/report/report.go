// Package report renders the allocation views as terminal text or as xlsx
// workbooks and publishes them through the blob store.
package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"text/tabwriter"
	"time"

	blobcore "amity/internal/blob/core"
	"amity/internal/core"
)

// Format is the rendered representation of a report.
type Format string

const (
	FormatText Format = "text"
	FormatXLSX Format = "xlsx"
)

const (
	contentTypeText = "text/plain; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// FormatFor picks the format from the output name's extension.
func FormatFor(name string) Format {
	if strings.EqualFold(path.Ext(name), ".xlsx") {
		return FormatXLSX
	}
	return FormatText
}

// WriteAllocations prints every room followed by its occupants.
func WriteAllocations(w io.Writer, rows []core.RoomAllocation) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No rooms in Amity")
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%s (%s %d/%d)\n", row.Room, row.Type, len(row.Occupants), row.Capacity); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, strings.Repeat("-", 40)); err != nil {
			return err
		}
		line := "(empty)"
		if len(row.Occupants) > 0 {
			line = strings.Join(row.Occupants, ", ")
		}
		if _, err := fmt.Fprintf(w, "%s\n\n", line); err != nil {
			return err
		}
	}
	return nil
}

// WriteRoom prints the occupants of one room, one per line.
func WriteRoom(w io.Writer, row core.RoomAllocation) error {
	if _, err := fmt.Fprintf(w, "%s (%s %d/%d)\n", row.Room, row.Type, len(row.Occupants), row.Capacity); err != nil {
		return err
	}
	if len(row.Occupants) == 0 {
		_, err := fmt.Fprintln(w, "  (empty)")
		return err
	}
	for _, name := range row.Occupants {
		if _, err := fmt.Fprintf(w, "  %s\n", name); err != nil {
			return err
		}
	}
	return nil
}

// WriteUnallocated prints a table of people missing rooms.
func WriteUnallocated(w io.Writer, rows []core.UnallocatedPerson) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "Everyone is allocated")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tROLE\tMISSING")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", row.ID, row.FullName, row.Role, joinTypes(row.Missing))
	}
	return tw.Flush()
}

func joinTypes(types []core.RoomType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

// PublishAllocations stores the allocations report under name, replacing any
// previous output.
func PublishAllocations(ctx context.Context, store blobcore.Store, name string, rows []core.RoomAllocation) (blobcore.Info, error) {
	return publish(ctx, store, name,
		func(w io.Writer) error { return WriteAllocations(w, rows) },
		func() ([]byte, error) { return AllocationsWorkbook(rows) },
	)
}

// PublishUnallocated stores the unallocated report under name.
func PublishUnallocated(ctx context.Context, store blobcore.Store, name string, rows []core.UnallocatedPerson) (blobcore.Info, error) {
	return publish(ctx, store, name,
		func(w io.Writer) error { return WriteUnallocated(w, rows) },
		func() ([]byte, error) { return UnallocatedWorkbook(rows) },
	)
}

// WriteListing prints a table of stored report files.
func WriteListing(w io.Writer, infos []blobcore.Info) error {
	if len(infos) == 0 {
		_, err := fmt.Fprintln(w, "No reports written")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tMODIFIED\tLOCATION")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", info.Key, info.Size, info.LastModified.Format(time.RFC3339), info.Location)
	}
	return tw.Flush()
}

// Show copies the stored report name to w. Workbooks are printed as
// tab-separated rows, one block per sheet.
func Show(ctx context.Context, store blobcore.Store, name string, w io.Writer) (blobcore.Info, error) {
	if store == nil {
		return blobcore.Info{}, fmt.Errorf("report %q: no output store configured", name)
	}
	info, rc, err := store.Get(ctx, name)
	if err != nil {
		return blobcore.Info{}, fmt.Errorf("read %s: %w", name, err)
	}
	defer rc.Close()
	if FormatFor(name) == FormatXLSX {
		err = writeWorkbookText(w, rc)
	} else {
		_, err = io.Copy(w, rc)
	}
	if err != nil {
		return blobcore.Info{}, fmt.Errorf("show %s: %w", name, err)
	}
	return info, nil
}

func publish(ctx context.Context, store blobcore.Store, name string, text func(io.Writer) error, sheet func() ([]byte, error)) (blobcore.Info, error) {
	if store == nil {
		return blobcore.Info{}, fmt.Errorf("report %q: no output store configured", name)
	}
	if strings.TrimSpace(name) == "" {
		return blobcore.Info{}, fmt.Errorf("report output name is required")
	}
	var (
		body        []byte
		contentType string
	)
	switch FormatFor(name) {
	case FormatXLSX:
		data, err := sheet()
		if err != nil {
			return blobcore.Info{}, fmt.Errorf("render %s: %w", name, err)
		}
		body, contentType = data, contentTypeXLSX
	default:
		var buf bytes.Buffer
		if err := text(&buf); err != nil {
			return blobcore.Info{}, fmt.Errorf("render %s: %w", name, err)
		}
		body, contentType = buf.Bytes(), contentTypeText
	}
	info, err := store.Put(ctx, name, bytes.NewReader(body), blobcore.PutOptions{ContentType: contentType, Overwrite: true})
	if err != nil {
		return blobcore.Info{}, fmt.Errorf("publish %s: %w", name, err)
	}
	return info, nil
}
