package main

import (
	"os"

	"github.com/hamed0406/uptimealert/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
