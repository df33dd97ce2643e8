package node

import (
	"flag"
	"fmt"

	"github.com/hashicorp-forge/workflowy/internal/cmd/base"
	"github.com/hashicorp-forge/workflowy/pkg/workflowy"
)

// CreateCommand creates a node.
type CreateCommand struct {
	*base.Command

	opts           apiOptions
	flagParent     string
	flagNote       string
	flagLayoutMode string
	flagPosition   string
}

func (c *CreateCommand) Synopsis() string {
	return "Create a node"
}

func (c *CreateCommand) Help() string {
	return `Usage: workflowy node create [options] <name>

  Create a node and print its id. Without -parent the node is created at
  the top level.` + c.Flags().Help()
}

func (c *CreateCommand) Flags() *base.FlagSet {
	f := c.opts.newFlagSet("node create")
	f.StringVar(&c.flagParent, "parent", "", "Parent node id (default: top level)")
	f.StringVar(&c.flagNote, "note", "", "Note text")
	f.StringVar(&c.flagLayoutMode, "layout", "", "Layout mode (default: default)")
	f.StringVar(&c.flagPosition, "position", "bottom", "Position among siblings (top, bottom)")
	return f
}

func (c *CreateCommand) Run(args []string) int {
	client, rest, code := setup(c.Command, &c.opts, c.Flags(), args, 1, "workflowy node create <name>")
	if code != 0 {
		return code
	}

	pos, err := workflowy.ParsePosition(c.flagPosition)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	ctx, cancel := commandContext()
	defer cancel()

	id, err := client.CreateNode(ctx, workflowy.CreateNodeRequest{
		ParentID:   c.flagParent,
		Name:       rest[0],
		Note:       c.flagNote,
		LayoutMode: c.flagLayoutMode,
		Position:   pos,
	})
	if err != nil {
		return apiError(c.Command, "creating node", err)
	}

	return c.Output(c.opts.flagFormat, map[string]string{"id": id}, func() string {
		return id
	})
}

// UpdateCommand changes the fields of a node.
type UpdateCommand struct {
	*base.Command

	opts           apiOptions
	flagName       string
	flagNote       string
	flagLayoutMode string
}

func (c *UpdateCommand) Synopsis() string {
	return "Change the name, note or layout of a node"
}

func (c *UpdateCommand) Help() string {
	return `Usage: workflowy node update [options] <id>

  Replace the fields given as flags. Fields without a flag are left
  unchanged; pass -note="" to clear the note.` + c.Flags().Help()
}

func (c *UpdateCommand) Flags() *base.FlagSet {
	f := c.opts.newFlagSet("node update")
	f.StringVar(&c.flagName, "name", "", "New name")
	f.StringVar(&c.flagNote, "note", "", "New note")
	f.StringVar(&c.flagLayoutMode, "layout", "", "New layout mode")
	return f
}

func (c *UpdateCommand) Run(args []string) int {
	f := c.Flags()
	client, rest, code := setup(c.Command, &c.opts, f, args, 1, "workflowy node update [-name] [-note] [-layout] <id>")
	if code != 0 {
		return code
	}

	var req workflowy.UpdateNodeRequest
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "name":
			req.Name = &c.flagName
		case "note":
			req.Note = &c.flagNote
		case "layout":
			req.LayoutMode = &c.flagLayoutMode
		}
	})

	ctx, cancel := commandContext()
	defer cancel()

	if err := client.UpdateNode(ctx, rest[0], req); err != nil {
		return apiError(c.Command, "updating node", err)
	}

	return c.Output(c.opts.flagFormat, map[string]string{"status": "ok"}, func() string {
		return fmt.Sprintf("Updated node %s", rest[0])
	})
}

// MoveCommand moves a node.
type MoveCommand struct {
	*base.Command

	opts         apiOptions
	flagPosition string
}

func (c *MoveCommand) Synopsis() string {
	return "Move a node under another node or a reserved location"
}

func (c *MoveCommand) Help() string {
	return `Usage: workflowy node move [options] <id> <target>

  Move a node. The target is a node id or one of the reserved locations
  "top-level", "home" and "inbox".` + c.Flags().Help()
}

func (c *MoveCommand) Flags() *base.FlagSet {
	f := c.opts.newFlagSet("node move")
	f.StringVar(&c.flagPosition, "position", "bottom", "Position among siblings (top, bottom)")
	return f
}

func (c *MoveCommand) Run(args []string) int {
	client, rest, code := setup(c.Command, &c.opts, c.Flags(), args, 2, "workflowy node move <id> <target>")
	if code != 0 {
		return code
	}

	target, err := workflowy.ParseTarget(rest[1])
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	pos, err := workflowy.ParsePosition(c.flagPosition)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	ctx, cancel := commandContext()
	defer cancel()

	if err := client.MoveNode(ctx, rest[0], target, pos); err != nil {
		return apiError(c.Command, "moving node", err)
	}

	return c.Output(c.opts.flagFormat, map[string]string{"status": "ok"}, func() string {
		return fmt.Sprintf("Moved node %s to the %s of %s", rest[0], pos, target)
	})
}
