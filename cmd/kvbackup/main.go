package main

import (
	"kvbackup/cmd/kvbackup/commands"
	"kvbackup/internal/cliutil"
)

func main() {
	commands.ExecuteContext(cliutil.SignalContext())
}
