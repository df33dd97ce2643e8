package main

import (
	"os"

	"github.com/hashicorp-forge/workflowy/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
