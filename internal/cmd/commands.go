package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/workflowy/internal/cmd/base"
	"github.com/hashicorp-forge/workflowy/internal/cmd/commands/node"
	"github.com/hashicorp-forge/workflowy/internal/cmd/commands/serve"
	"github.com/hashicorp-forge/workflowy/internal/cmd/commands/tree"
	"github.com/hashicorp-forge/workflowy/internal/cmd/commands/version"
)

// Commands is the mapping of all available CLI commands.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	b := base.NewCommand(log, ui)

	action := func(a node.Action) cli.CommandFactory {
		return func() (cli.Command, error) {
			return &node.ActionCommand{Command: b, Action: a}, nil
		}
	}

	Commands = map[string]cli.CommandFactory{
		"node": func() (cli.Command, error) {
			return &node.Command{Command: b}, nil
		},
		"node get": func() (cli.Command, error) {
			return &node.GetCommand{Command: b}, nil
		},
		"node list": func() (cli.Command, error) {
			return &node.ListCommand{Command: b}, nil
		},
		"node create": func() (cli.Command, error) {
			return &node.CreateCommand{Command: b}, nil
		},
		"node update": func() (cli.Command, error) {
			return &node.UpdateCommand{Command: b}, nil
		},
		"node delete":     action(node.ActionDelete),
		"node complete":   action(node.ActionComplete),
		"node uncomplete": action(node.ActionUncomplete),
		"node move": func() (cli.Command, error) {
			return &node.MoveCommand{Command: b}, nil
		},
		"serve": func() (cli.Command, error) {
			return &serve.Command{Command: b}, nil
		},
		"tree": func() (cli.Command, error) {
			return &tree.Command{Command: b}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{Command: b}, nil
		},
	}
}
