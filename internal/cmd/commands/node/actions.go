package node

import (
	"context"
	"fmt"

	"github.com/hashicorp-forge/workflowy/internal/cmd/base"
	"github.com/hashicorp-forge/workflowy/pkg/workflowy"
)

// Action is an id-only node operation confirmed by the API.
type Action int

const (
	ActionDelete Action = iota
	ActionComplete
	ActionUncomplete
)

type actionInfo struct {
	name     string
	synopsis string
	verb     string
	done     string
	call     func(*workflowy.Client, context.Context, string) error
}

var actions = map[Action]actionInfo{
	ActionDelete: {
		name:     "delete",
		synopsis: "Permanently delete a node",
		verb:     "deleting node",
		done:     "Deleted node %s",
		call:     (*workflowy.Client).DeleteNode,
	},
	ActionComplete: {
		name:     "complete",
		synopsis: "Mark a node as completed",
		verb:     "completing node",
		done:     "Completed node %s",
		call:     (*workflowy.Client).CompleteNode,
	},
	ActionUncomplete: {
		name:     "uncomplete",
		synopsis: "Mark a node as not completed",
		verb:     "uncompleting node",
		done:     "Uncompleted node %s",
		call:     (*workflowy.Client).UncompleteNode,
	},
}

// ActionCommand runs one Action against a node.
type ActionCommand struct {
	*base.Command

	Action Action

	opts apiOptions
}

func (c *ActionCommand) Synopsis() string {
	return actions[c.Action].synopsis
}

func (c *ActionCommand) Help() string {
	info := actions[c.Action]
	return fmt.Sprintf(`Usage: workflowy node %s [options] <id>

  %s.`, info.name, info.synopsis) + c.Flags().Help()
}

func (c *ActionCommand) Flags() *base.FlagSet {
	return c.opts.newFlagSet("node " + actions[c.Action].name)
}

func (c *ActionCommand) Run(args []string) int {
	info := actions[c.Action]

	client, rest, code := setup(c.Command, &c.opts, c.Flags(), args, 1,
		fmt.Sprintf("workflowy node %s <id>", info.name))
	if code != 0 {
		return code
	}

	ctx, cancel := commandContext()
	defer cancel()

	if err := info.call(client, ctx, rest[0]); err != nil {
		return apiError(c.Command, info.verb, err)
	}

	return c.Output(c.opts.flagFormat, map[string]string{"status": "ok"}, func() string {
		return fmt.Sprintf(info.done, rest[0])
	})
}
