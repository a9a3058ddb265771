package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	blobcore "amity/internal/blob/core"
	"amity/internal/core"
	"amity/internal/importer"
	"amity/internal/report"
	"amity/pkg/domain"
)

type command struct {
	usage string
	run   func(ctx context.Context, args []string) error
}

func (s *Shell) commandTable() map[string]command {
	return map[string]command{
		"create_room":       {usage: "create_room <room_type> <room_name>...", run: s.createRoom},
		"add_person":        {usage: "add_person <person_id> <first_name> <last_name> <STAFF|STUDENT> [--wants_accommodation[=Y|N]]", run: s.addPerson},
		"reallocate_person": {usage: "reallocate_person <person_id|first_name last_name> <new_room_name>", run: s.reallocate},
		"allocate":          {usage: "allocate [<person_id|first_name last_name>]", run: s.allocate},
		"load_people":       {usage: "load_people <file>", run: s.loadPeople},
		"print_allocations": {usage: "print_allocations [--o=filename]", run: s.printAllocations},
		"print_unallocated": {usage: "print_unallocated [--o=filename]", run: s.printUnallocated},
		"print_room":        {usage: "print_room <room_name>", run: s.printRoom},
		"list_rooms":        {usage: "list_rooms [OFFICE|LIVING_SPACE]", run: s.listRooms},
		"save_state":        {usage: "save_state [--db=name]", run: s.saveState},
		"load_state":        {usage: "load_state [--db=name]", run: s.loadState},
		"list_states":       {usage: "list_states", run: s.listStates},
		"list_reports":      {usage: "list_reports [prefix]", run: s.listReports},
		"show_report":       {usage: "show_report <filename>", run: s.showReport},
		"delete_report":     {usage: "delete_report <filename>", run: s.deleteReport},
		"print_metrics":     {usage: "print_metrics", run: s.printMetrics},
		"help":              {usage: "help", run: func(context.Context, []string) error { s.Help(); return nil }},
	}
}

func noFlags(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

// createRoom accepts the type first followed by any number of names, or a
// single name followed by its type.
func (s *Shell) createRoom(ctx context.Context, args []string) error {
	args, err := parseFlags(noFlags("create_room"), args)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return ErrUsage
	}
	roomType, typeErr := domain.ParseRoomType(args[0])
	names := args[1:]
	if typeErr != nil {
		if len(args) != 2 {
			return typeErr
		}
		roomType, err = domain.ParseRoomType(args[1])
		if err != nil {
			return err
		}
		names = args[:1]
	}
	rooms, err := s.svc.CreateRooms(ctx, roomType, names...)
	if err != nil {
		return err
	}
	for _, room := range rooms {
		s.printf("Created %s %s (capacity %d)\n", room.Type, room.Name, room.Capacity)
	}
	return nil
}

func (s *Shell) addPerson(ctx context.Context, args []string) error {
	fs := noFlags("add_person")
	var wants wantsFlag
	fs.Var(&wants, "wants_accommodation", "Y|N")
	args, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(args) != 4 {
		return ErrUsage
	}
	role, err := domain.ParseRole(args[3])
	if err != nil {
		return err
	}
	placement, err := s.svc.AddPerson(ctx, core.NewPerson{
		ID:                 args[0],
		FirstName:          args[1],
		LastName:           args[2],
		Role:               role,
		WantsAccommodation: wants.value,
	})
	if err != nil {
		return err
	}
	person := placement.Person
	s.printf("Added %s %s (%s)\n", person.Role, person.FullName(), person.ID)
	if wants.value && role == domain.RoleStaff {
		s.printf("  staff cannot be given a living space\n")
	}
	s.printPlacement(placement)
	return nil
}

func (s *Shell) printPlacement(p core.Placement) {
	for _, roomType := range domain.RoomTypes {
		if name, ok := p.Assigned[roomType]; ok {
			s.printf("  %s: %s\n", roomType, name)
		}
	}
	for _, roomType := range p.Unallocated {
		s.printf("  no %s available, %s is on the waiting list\n", roomType, p.Person.FullName())
	}
}

func (s *Shell) reallocate(ctx context.Context, args []string) error {
	args, err := parseFlags(noFlags("reallocate_person"), args)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return ErrUsage
	}
	ref := strings.Join(args[:len(args)-1], " ")
	roomName := args[len(args)-1]
	person, err := s.svc.Reallocate(ctx, ref, roomName)
	if err != nil {
		return err
	}
	if room, ok := s.svc.FindRoom(ctx, roomName); ok {
		roomName = room.Name
	}
	s.printf("%s moved to %s\n", person.FullName(), roomName)
	return nil
}

func (s *Shell) allocate(ctx context.Context, args []string) error {
	args, err := parseFlags(noFlags("allocate"), args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		placements, err := s.svc.AllocatePending(ctx)
		if err != nil {
			return err
		}
		if len(placements) == 0 {
			s.printf("Nobody could be allocated\n")
			return nil
		}
		for _, p := range placements {
			s.printf("%s (%s)\n", p.Person.FullName(), p.Person.ID)
			s.printPlacement(p)
		}
		return nil
	}
	placement, err := s.svc.Allocate(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if len(placement.Assigned) == 0 && placement.Allocated() {
		s.printf("%s already has every room they need\n", placement.Person.FullName())
		return nil
	}
	s.printf("%s (%s)\n", placement.Person.FullName(), placement.Person.ID)
	s.printPlacement(placement)
	return nil
}

func (s *Shell) loadPeople(ctx context.Context, args []string) error {
	args, err := parseFlags(noFlags("load_people"), args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return ErrUsage
	}
	records, skipped, err := s.loader.Load(ctx, args[0])
	if err != nil {
		return err
	}
	for _, lineErr := range skipped {
		s.printf("Skipped %v\n", lineErr)
		if s.logger != nil {
			s.logger.Warn("people file line skipped", "source", args[0], "line", lineErr.Line, "error", lineErr.Err)
		}
	}
	summary, err := importer.Import(ctx, s.svc, records, s.logger)
	for _, warn := range summary.Warnings {
		s.printf("Skipped %v\n", warn)
	}
	for _, p := range summary.Placements {
		s.printf("Added %s %s (%s)\n", p.Person.Role, p.Person.FullName(), p.Person.ID)
		s.printPlacement(p)
	}
	if err != nil {
		return err
	}
	s.printf("Loaded %d of %d people from %s\n", len(summary.Placements), len(records)+len(skipped), args[0])
	return nil
}

func outputFlag(name string) (*flag.FlagSet, *string) {
	fs := noFlags(name)
	out := fs.String("o", "", "output file")
	return fs, out
}

func (s *Shell) printAllocations(ctx context.Context, args []string) error {
	fs, out := outputFlag("print_allocations")
	args, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return ErrUsage
	}
	rows, err := s.svc.ListAllocations(ctx)
	if err != nil {
		return err
	}
	if *out == "" {
		return report.WriteAllocations(s.out, rows)
	}
	info, err := report.PublishAllocations(ctx, s.blobs, *out, rows)
	if err != nil {
		return err
	}
	s.printf("Allocations written to %s\n", info.Location)
	return nil
}

func (s *Shell) printUnallocated(ctx context.Context, args []string) error {
	fs, out := outputFlag("print_unallocated")
	args, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return ErrUsage
	}
	rows, err := s.svc.ListUnallocated(ctx)
	if err != nil {
		return err
	}
	if *out == "" {
		return report.WriteUnallocated(s.out, rows)
	}
	info, err := report.PublishUnallocated(ctx, s.blobs, *out, rows)
	if err != nil {
		return err
	}
	s.printf("Unallocated people written to %s\n", info.Location)
	return nil
}

func (s *Shell) printRoom(ctx context.Context, args []string) error {
	args, err := parseFlags(noFlags("print_room"), args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return ErrUsage
	}
	row, err := s.svc.RoomOccupants(ctx, args[0])
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			return fmt.Errorf("there is no room called %s in Amity", args[0])
		}
		return err
	}
	return report.WriteRoom(s.out, row)
}

func (s *Shell) listRooms(ctx context.Context, args []string) error {
	args, err := parseFlags(noFlags("list_rooms"), args)
	if err != nil {
		return err
	}
	if len(args) > 1 {
		return ErrUsage
	}
	types := domain.RoomTypes
	if len(args) == 1 {
		roomType, err := domain.ParseRoomType(args[0])
		if err != nil {
			return err
		}
		types = []domain.RoomType{roomType}
	}
	listed := 0
	for _, roomType := range types {
		for _, room := range s.svc.RoomsOfType(ctx, roomType) {
			s.printf("%s (%s %d/%d, %d free)\n", room.Name, room.Type, len(room.Occupants), room.Capacity, room.Vacancies())
			listed++
		}
	}
	if listed == 0 {
		s.printf("No rooms in Amity\n")
	}
	return nil
}

// stateArgs accepts --db=name or a single positional name.
func (s *Shell) stateArgs(name string, args []string) (string, error) {
	fs := noFlags(name)
	db := fs.String("db", "", "state name")
	args, err := parseFlags(fs, args)
	if err != nil {
		return "", err
	}
	switch {
	case len(args) > 1, len(args) == 1 && *db != "":
		return "", ErrUsage
	case len(args) == 1:
		return args[0], nil
	case *db != "":
		return *db, nil
	default:
		return s.stateName, nil
	}
}

func (s *Shell) saveState(ctx context.Context, args []string) error {
	name, err := s.stateArgs("save_state", args)
	if err != nil {
		return err
	}
	snapshot, err := s.svc.SaveState(ctx, s.states, name)
	if err != nil {
		return err
	}
	s.printf("Saved %d rooms and %d people to %s\n", len(snapshot.Rooms), len(snapshot.People), name)
	return nil
}

func (s *Shell) loadState(ctx context.Context, args []string) error {
	name, err := s.stateArgs("load_state", args)
	if err != nil {
		return err
	}
	snapshot, err := s.svc.LoadState(ctx, s.states, name)
	if err != nil {
		return err
	}
	s.printf("Loaded %d rooms and %d people from %s\n", len(snapshot.Rooms), len(snapshot.People), name)
	return nil
}

func (s *Shell) listStates(ctx context.Context, args []string) error {
	args, err := parseFlags(noFlags("list_states"), args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return ErrUsage
	}
	names, err := s.svc.ListStates(ctx, s.states)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		s.printf("No saved states\n")
		return nil
	}
	for _, name := range names {
		s.printf("%s\n", name)
	}
	return nil
}

func (s *Shell) reportStore() (blobcore.Store, error) {
	if s.blobs == nil {
		return nil, errors.New("no report output store configured")
	}
	return s.blobs, nil
}

func (s *Shell) listReports(ctx context.Context, args []string) error {
	args, err := parseFlags(noFlags("list_reports"), args)
	if err != nil {
		return err
	}
	if len(args) > 1 {
		return ErrUsage
	}
	store, err := s.reportStore()
	if err != nil {
		return err
	}
	prefix := ""
	if len(args) == 1 {
		prefix = args[0]
	}
	infos, err := store.List(ctx, prefix)
	if err != nil {
		return fmt.Errorf("list reports: %w", err)
	}
	return report.WriteListing(s.out, infos)
}

func (s *Shell) showReport(ctx context.Context, args []string) error {
	args, err := parseFlags(noFlags("show_report"), args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return ErrUsage
	}
	store, err := s.reportStore()
	if err != nil {
		return err
	}
	if _, err := report.Show(ctx, store, args[0], s.out); err != nil {
		if errors.Is(err, blobcore.ErrNotFound) {
			return fmt.Errorf("there is no report called %s", args[0])
		}
		return err
	}
	return nil
}

func (s *Shell) deleteReport(ctx context.Context, args []string) error {
	args, err := parseFlags(noFlags("delete_report"), args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return ErrUsage
	}
	store, err := s.reportStore()
	if err != nil {
		return err
	}
	deleted, err := store.Delete(ctx, args[0])
	if err != nil {
		return fmt.Errorf("delete %s: %w", args[0], err)
	}
	if !deleted {
		return fmt.Errorf("there is no report called %s", args[0])
	}
	if s.logger != nil {
		s.logger.Info("report deleted", "name", args[0])
	}
	s.printf("Deleted %s\n", args[0])
	return nil
}

func (s *Shell) printMetrics(_ context.Context, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	if s.metrics == nil {
		return errors.New("metrics are not enabled")
	}
	counts, err := s.metrics.Counts()
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		s.printf("No operations recorded\n")
		return nil
	}
	for _, c := range counts {
		s.printf("%-20s %-8s %d\n", c.Operation, c.Status, c.Count)
	}
	return nil
}
