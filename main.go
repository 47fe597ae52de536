// The main package for the weather-lookup executable.
package main

import (
	"github.com/JakeFAU/weather-lookup/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
