package main

import (
	"github.com/elmatools/acrossrec/cmd/acrossrec/cmd"
)

func main() {
	cmd.Execute()
}
