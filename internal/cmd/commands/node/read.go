package node

import (
	"strings"

	"github.com/hashicorp-forge/workflowy/internal/cmd/base"
)

// GetCommand shows a single node.
type GetCommand struct {
	*base.Command

	opts apiOptions
}

func (c *GetCommand) Synopsis() string {
	return "Show a single node"
}

func (c *GetCommand) Help() string {
	return `Usage: workflowy node get [options] <id>

  Fetch a node by id. The API does not return the parent of a single node.` +
		c.Flags().Help()
}

func (c *GetCommand) Flags() *base.FlagSet {
	return c.opts.newFlagSet("node get")
}

func (c *GetCommand) Run(args []string) int {
	client, rest, code := setup(c.Command, &c.opts, c.Flags(), args, 1, "workflowy node get <id>")
	if code != 0 {
		return code
	}

	ctx, cancel := commandContext()
	defer cancel()

	node, err := client.GetNode(ctx, rest[0])
	if err != nil {
		return apiError(c.Command, "fetching node", err)
	}

	return c.Output(c.opts.flagFormat, node, func() string {
		return formatNode(node)
	})
}

// ListCommand lists the children of a node.
type ListCommand struct {
	*base.Command

	opts       apiOptions
	flagParent string
}

func (c *ListCommand) Synopsis() string {
	return "List the children of a node or the top level"
}

func (c *ListCommand) Help() string {
	return `Usage: workflowy node list [options]

  List the direct children of -parent, or the top-level nodes when -parent
  is not set.` + c.Flags().Help()
}

func (c *ListCommand) Flags() *base.FlagSet {
	f := c.opts.newFlagSet("node list")
	f.StringVar(
		&c.flagParent, "parent", "",
		"Parent node id (default: top level)",
	)
	return f
}

func (c *ListCommand) Run(args []string) int {
	client, _, code := setup(c.Command, &c.opts, c.Flags(), args, 0, "workflowy node list [-parent=<id>]")
	if code != 0 {
		return code
	}

	ctx, cancel := commandContext()
	defer cancel()

	nodes, err := client.GetNodes(ctx, c.flagParent)
	if err != nil {
		return apiError(c.Command, "listing nodes", err)
	}

	return c.Output(c.opts.flagFormat, nodes, func() string {
		if len(nodes) == 0 {
			return "No nodes found."
		}
		lines := make([]string, 0, len(nodes))
		for _, n := range nodes {
			lines = append(lines, formatNodeLine(n))
		}
		return strings.Join(lines, "\n")
	})
}
