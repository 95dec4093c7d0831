// Command entropy lays out and explores graph datasets with a
// force-directed simulation, in the terminal or as SVG and PNG snapshots.
package main

import (
	"os"

	"github.com/vanderheijden86/entropy/pkg/cliui"
)

func main() {
	a := &app{}
	err := a.rootCmd().Execute()
	a.teardown()
	if err != nil {
		cliui.Errorf(os.Stderr, "%v", err)
		os.Exit(1)
	}
}
