package main

import (
	"os"

	"github.com/AGLOP-1354/taskboard/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
