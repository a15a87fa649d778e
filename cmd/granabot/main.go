// Package main provides the entry point for the granabot CLI application.
package main

import (
	"os"

	"rmarinho/granabot/cmd/chat"
	"rmarinho/granabot/cmd/export"
	"rmarinho/granabot/cmd/root"
)

func main() {
	root.Cmd.AddCommand(chat.Cmd)
	root.Cmd.AddCommand(export.Cmd)

	if err := root.Cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
