package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fatal(err.Error())
	}
}

func logStderr(msg string) {
	fmt.Fprintln(os.Stderr, "vybium-pprime:", msg)
}

func fatal(msg string) {
	logStderr("ERROR: " + msg)
	os.Exit(1)
}
