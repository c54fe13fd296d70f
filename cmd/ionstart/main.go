package main

import (
	"github.com/tacogips/ionstart/internal/cli"
)

func main() {
	cli.Execute()
}
