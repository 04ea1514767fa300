package main

import (
	"github.com/openrhythm/rox/cmd"
)

func main() {
	cmd.Execute()
}
