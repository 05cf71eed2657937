package main

import (
	"os"

	"github.com/fastygo/taskflow/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
