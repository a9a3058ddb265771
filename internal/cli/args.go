package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"amity/internal/importer"
)

// ErrUsage marks a command invoked with invalid arguments.
var ErrUsage = errors.New("invalid command")

// splitArgs breaks a command line into words. Single or double quotes group
// words containing spaces.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		quote   rune
		inWord  bool
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			current.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				args = append(args, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("%w: unterminated quote", ErrUsage)
	}
	if inWord {
		args = append(args, current.String())
	}
	return args, nil
}

// parseFlags separates --options from positional words and parses the
// options with fs. Options may appear anywhere on the line.
func parseFlags(fs *flag.FlagSet, args []string) ([]string, error) {
	fs.SetOutput(io.Discard)
	var positional, options []string
	for _, arg := range args {
		if strings.HasPrefix(arg, "--") && len(arg) > 2 {
			options = append(options, arg)
			continue
		}
		positional = append(positional, arg)
	}
	if err := fs.Parse(options); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return positional, nil
}

// wantsFlag accepts both the bare flag and an explicit Y|N value.
type wantsFlag struct {
	set   bool
	value bool
}

func (w *wantsFlag) String() string {
	if w == nil || !w.value {
		return "N"
	}
	return "Y"
}

func (w *wantsFlag) Set(raw string) error {
	v, err := importer.ParseWants(raw)
	if err != nil {
		return err
	}
	w.set, w.value = true, v
	return nil
}

func (w *wantsFlag) IsBoolFlag() bool { return true }
