package main

import (
	"os"

	"github.com/museumsvictoria/nodel-sub003/cmd"
)

func main() {
	cmd.Run(os.Args[1:])
}
