package node

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/workflowy/internal/cmd/base"
	"github.com/hashicorp-forge/workflowy/pkg/workflowy"
)

// Command is the parent of the node subcommands.
type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Read and modify Workflowy nodes"
}

func (c *Command) Help() string {
	return `Usage: workflowy node <subcommand> [options] [args]

  Read and modify individual nodes through the Workflowy API.

Subcommands:

    get          Show a single node
    list         List the children of a node or the top level
    create       Create a node
    update       Change the name, note or layout of a node
    delete       Permanently delete a node
    complete     Mark a node as completed
    uncomplete   Mark a node as not completed
    move         Move a node under another node or a reserved location`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

// apiOptions holds the flags shared by subcommands that call the API.
type apiOptions struct {
	cfgFlags   base.ConfigFlags
	flagFormat string
}

func (o *apiOptions) newFlagSet(name string) *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet(name, flag.ContinueOnError))
	o.cfgFlags.Register(f)
	f.StringVar(
		&o.flagFormat, "format", base.FormatText,
		"Output format (text, json, yaml)",
	)
	return f
}

// setup parses args and creates a client. It returns the positional
// arguments, or a non-zero exit code.
func setup(c *base.Command, o *apiOptions, f *base.FlagSet, args []string, nargs int, usage string) (*workflowy.Client, []string, int) {
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return nil, nil, 1
	}
	if err := base.ValidateFormat(o.flagFormat); err != nil {
		c.UI.Error(err.Error())
		return nil, nil, 1
	}

	rest := f.Args()
	if len(rest) != nargs {
		c.UI.Error(fmt.Sprintf("expected %d argument(s), got %d\n\nUsage: %s", nargs, len(rest), usage))
		return nil, nil, 1
	}

	cfg, err := c.LoadConfig(&o.cfgFlags)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error loading configuration: %v", err))
		return nil, nil, 1
	}

	client, err := c.NewClient(cfg)
	if err != nil {
		c.UI.Error(err.Error())
		return nil, nil, 1
	}
	return client, rest, 0
}

// apiError reports err, preferring the remote message for API failures.
func apiError(c *base.Command, action string, err error) int {
	c.Log.Debug("api call failed", "action", action, "error", err)

	var wfErr *workflowy.Error
	if errors.As(err, &wfErr) {
		msg := wfErr.Message()
		if wfErr.StatusCode != 0 {
			msg = fmt.Sprintf("%s (status %d)", msg, wfErr.StatusCode)
		}
		c.UI.Error(fmt.Sprintf("error %s: %s: %s", action, wfErr.Kind, msg))
		return 1
	}
	c.UI.Error(fmt.Sprintf("error %s: %v", action, err))
	return 1
}

func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// formatNode renders a node as aligned key/value lines.
func formatNode(n *workflowy.Node) string {
	var b strings.Builder
	line := func(k, v string) {
		if v != "" {
			fmt.Fprintf(&b, "%-12s %s\n", k+":", v)
		}
	}

	line("ID", n.ID)
	line("Name", n.Name)
	line("Note", n.Note)
	line("Parent", n.ParentID)
	line("Layout", n.LayoutMode)
	line("Priority", fmt.Sprint(n.Priority))
	line("Completed", fmt.Sprint(n.Completed))
	if n.CompletedAt != nil {
		line("Completed at", formatTime(*n.CompletedAt))
	}
	line("Created", formatTime(n.CreatedAt))
	line("Modified", formatTime(n.ModifiedAt))

	return strings.TrimSuffix(b.String(), "\n")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// formatNodeLine renders a node on one line for lists.
func formatNodeLine(n workflowy.Node) string {
	mark := "[ ]"
	if n.Completed {
		mark = "[x]"
	}
	return fmt.Sprintf("%s %s  %s", mark, n.ID, n.Name)
}
