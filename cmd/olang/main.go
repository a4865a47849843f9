package main

import (
	"os"

	"github.com/beerose/olang/cmd/olang/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
