package version

import (
	"github.com/hashicorp-forge/workflowy/internal/cmd/base"
	"github.com/hashicorp-forge/workflowy/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version"
}

func (c *Command) Help() string {
	return "Usage: workflowy version"
}

func (c *Command) Run(args []string) int {
	c.UI.Output("workflowy " + version.String())
	return 0
}
