package tree

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtree "github.com/charmbracelet/lipgloss/tree"

	"github.com/hashicorp-forge/workflowy/internal/cmd/base"
	"github.com/hashicorp-forge/workflowy/pkg/workflowy"
)

var (
	styleDim  = lipgloss.NewStyle().Foreground(lipgloss.Color("#928374"))
	styleDone = lipgloss.NewStyle().Foreground(lipgloss.Color("#8ec07c"))
	styleWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("#fabd2f"))
)

type Command struct {
	*base.Command

	cfgFlags     base.ConfigFlags
	flagFormat   string
	flagRoot     string
	flagDepth    int
	flagHideDone bool
	flagShowIDs  bool
}

func (c *Command) Synopsis() string {
	return "Export every node and print the outline"
}

func (c *Command) Help() string {
	return `Usage: workflowy tree [options]

  Export all nodes, rebuild the outline and print it. Nodes whose parent is
  missing from the export are shown at the top level and reported.` +
		c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("tree", flag.ContinueOnError))
	c.cfgFlags.Register(f)

	f.StringVar(
		&c.flagFormat, "format", base.FormatText,
		"Output format (text, json, yaml)",
	)
	f.StringVar(
		&c.flagRoot, "root", "",
		"Only print the subtree under this node id",
	)
	f.IntVar(
		&c.flagDepth, "depth", 0,
		"Maximum depth to print in text format (0 for unlimited)",
	)
	f.BoolVar(
		&c.flagHideDone, "hide-completed", false,
		"Omit completed nodes and their children in text format",
	)
	f.BoolVar(
		&c.flagShowIDs, "ids", false,
		"Show node ids in text format",
	)

	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if err := base.ValidateFormat(c.flagFormat); err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	cfg, err := c.LoadConfig(&c.cfgFlags)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error loading configuration: %v", err))
		return 1
	}
	client, err := c.NewClient(cfg)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	forest, err := client.GetAllNodesAsTree(ctx)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error building tree: %v", err))
		return 1
	}

	var out any = forest
	roots := forest.Roots
	if c.flagRoot != "" {
		root, ok := forest.Lookup(c.flagRoot)
		if !ok {
			c.UI.Error(fmt.Sprintf("node %q not found in export", c.flagRoot))
			return 1
		}
		out = root
		roots = []*workflowy.TreeNode{root}
	}

	if len(forest.Orphans) > 0 {
		c.UI.Warn(styleWarn.Render(fmt.Sprintf(
			"%d node(s) reference a parent missing from the export: %s",
			len(forest.Orphans), strings.Join(forest.Orphans, ", "))))
	}

	return c.Output(c.flagFormat, out, func() string {
		return Render(roots, RenderOptions{
			MaxDepth:      c.flagDepth,
			HideCompleted: c.flagHideDone,
			ShowIDs:       c.flagShowIDs,
		})
	})
}

// RenderOptions controls the text rendering of an outline.
type RenderOptions struct {
	// MaxDepth limits the printed depth; 0 prints everything.
	MaxDepth int

	HideCompleted bool
	ShowIDs       bool
}

// Render draws the outline rooted at roots with box-drawing connectors.
func Render(roots []*workflowy.TreeNode, opts RenderOptions) string {
	if len(roots) == 0 {
		return "No nodes found."
	}

	top := lgtree.New().
		Enumerator(lgtree.RoundedEnumerator).
		EnumeratorStyle(styleDim)

	// Walk visits parents before children, so every parent's subtree
	// exists before its children are attached.
	subtrees := make(map[*workflowy.TreeNode]*lgtree.Tree)
	walk := func(n *workflowy.TreeNode, depth int) bool {
		if opts.HideCompleted && n.Node.Completed {
			return false
		}
		if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
			return false
		}

		t := lgtree.Root(label(n, opts)).
			Enumerator(lgtree.RoundedEnumerator).
			EnumeratorStyle(styleDim)
		subtrees[n] = t

		if parent, ok := subtrees[n.Parent()]; ok && depth > 0 {
			parent.Child(t)
		} else {
			top.Child(t)
		}
		return true
	}

	for _, r := range roots {
		r.Walk(walk)
	}

	return top.String()
}

func label(n *workflowy.TreeNode, opts RenderOptions) string {
	name := n.Node.Name
	if name == "" {
		name = "(untitled)"
	}

	if n.Node.Completed {
		name = styleDone.Render("✔ ") + styleDim.Render(name)
	}
	if opts.ShowIDs {
		name += " " + styleDim.Render("["+n.Node.ID+"]")
	}
	return name
}
