// Package cli implements the interactive Amity command shell.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	blobcore "amity/internal/blob/core"
	"amity/internal/core"
	"amity/internal/importer"
)

// Prompt is printed before each interactive command.
const Prompt = "amity> "

const banner = `********************************************
      WELCOME TO AMITY SPACE ALLOCATION!
********************************************
Type "help" to list commands, "quit" to leave.
`

// MetricsSource reports operation counters for print_metrics.
type MetricsSource interface {
	Counts() ([]core.OperationCount, error)
}

// Shell dispatches command lines to the allocation service.
type Shell struct {
	svc       *core.Service
	out       io.Writer
	states    core.StateStore
	blobs     blobcore.Store
	loader    *importer.Loader
	metrics   MetricsSource
	logger    core.Logger
	stateName string
	commands  map[string]command
}

// Option configures a Shell.
type Option func(*Shell)

// WithStateStore sets the store used by save_state and load_state.
func WithStateStore(store core.StateStore) Option {
	return func(s *Shell) { s.states = store }
}

// WithBlobStore sets where --o report files are written.
func WithBlobStore(store blobcore.Store) Option {
	return func(s *Shell) { s.blobs = store }
}

// WithLoader sets the people file loader.
func WithLoader(loader *importer.Loader) Option {
	return func(s *Shell) {
		if loader != nil {
			s.loader = loader
		}
	}
}

// WithMetrics enables print_metrics.
func WithMetrics(source MetricsSource) Option {
	return func(s *Shell) { s.metrics = source }
}

// WithLogger sets the logger used for import warnings.
func WithLogger(logger core.Logger) Option {
	return func(s *Shell) { s.logger = logger }
}

// WithDefaultStateName overrides the store name used when --db is omitted.
func WithDefaultStateName(name string) Option {
	return func(s *Shell) {
		if strings.TrimSpace(name) != "" {
			s.stateName = strings.TrimSpace(name)
		}
	}
}

// New returns a shell writing its output to out.
func New(svc *core.Service, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		svc:       svc,
		out:       out,
		loader:    importer.NewLoader(),
		stateName: core.DefaultStateName,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.commands = s.commandTable()
	return s
}

// Execute runs one command line. It reports whether the shell should exit.
// Errors have already been printed; they are returned so that one-shot
// callers can set an exit status.
func (s *Shell) Execute(ctx context.Context, line string) (bool, error) {
	args, err := splitArgs(strings.TrimSpace(line))
	if err != nil {
		s.printf("%v\n", err)
		return false, err
	}
	if len(args) == 0 {
		return false, nil
	}
	name := strings.ToLower(args[0])
	if name == "quit" || name == "exit" {
		s.printf("GOODBYE!!!\n")
		return true, nil
	}
	cmd, ok := s.commands[name]
	if !ok {
		err := fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
		s.printf("Unknown command %q. Type \"help\" to list commands.\n", args[0])
		return false, err
	}
	if err := cmd.run(ctx, args[1:]); err != nil {
		if errors.Is(err, ErrUsage) {
			s.printf("Invalid command!\nUsage: %s\n", cmd.usage)
		} else {
			s.printf("Error: %v\n", err)
		}
		return false, err
	}
	return false, nil
}

// Run prints the banner and executes commands read from in until quit or
// end of input.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	s.printf("%s", banner)
	scanner := bufio.NewScanner(in)
	for {
		s.printf("%s", Prompt)
		if !scanner.Scan() {
			s.printf("\n")
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		quit, _ := s.Execute(ctx, scanner.Text())
		if quit {
			return nil
		}
	}
}

// Help prints the command summary.
func (s *Shell) Help() {
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	s.printf("Commands:\n")
	for _, name := range names {
		s.printf("  %s\n", s.commands[name].usage)
	}
	s.printf("  quit\n")
	capacities := s.svc.Capacities()
	s.printf("Room capacity: %s %d, %s %d\n", core.RoomTypeOffice, capacities.Office, core.RoomTypeLivingSpace, capacities.LivingSpace)
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
