// Package main is the entry point for the discue CLI.
package main

import (
	"fmt"
	"os"

	"github.com/ysakura/discue/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
