// Package commands is a small subcommand registry over flag.FlagSet.
package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
)

// ErrUnknown is returned by Execute for a name nothing was registered under.
var ErrUnknown = errors.New("unknown command")

// Command is a subcommand with its own flags and a Run function.
// Run receives the positional arguments left after flag parsing.
type Command struct {
	Name    string
	Summary string
	FlagSet *flag.FlagSet
	Run     func(args []string) error
}

// Registry holds subcommands by name.
type Registry struct {
	cmds     map[string]*Command
	fallback string
}

// NewRegistry returns an empty registry. fallback names the command run when the
// arguments do not start with a registered name.
func NewRegistry(fallback string) *Registry {
	return &Registry{cmds: make(map[string]*Command), fallback: fallback}
}

// Register adds a subcommand. run is called after fs.Parse succeeds.
func (r *Registry) Register(name, summary string, fs *flag.FlagSet, run func(args []string) error) {
	r.cmds[name] = &Command{Name: name, Summary: summary, FlagSet: fs, Run: run}
}

// Execute runs the subcommand named by args[0] with the rest as its arguments. When
// args is empty or starts with a flag, the fallback command gets all of args.
func (r *Registry) Execute(args []string) error {
	name := r.fallback
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		name, args = args[0], args[1:]
	}
	cmd, ok := r.cmds[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknown, name)
	}
	if err := cmd.FlagSet.Parse(args); err != nil {
		return err
	}
	return cmd.Run(cmd.FlagSet.Args())
}

// Usage writes one line per command, sorted by name.
func (r *Registry) Usage(w io.Writer) {
	names := make([]string, 0, len(r.cmds))
	for n := range r.cmds {
		names = append(names, n)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "commands:")
	for _, n := range names {
		fmt.Fprintf(w, "  %-8s %s\n", n, r.cmds[n].Summary)
	}
}
