package main

import (
	"os"

	"github.com/dshills/termexplain/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
