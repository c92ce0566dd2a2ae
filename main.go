package main

import (
	"os"

	"filemerge/cmd"
)

func main() {
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "menu")
	}
	cmd.Execute()
}
