// Entrypoint for the Cobra CLI; all handling lives in cmd/root.go.

package main

import (
	"github.com/coloc-sim/coloc-sim/cmd"
)

func main() {
	cmd.Execute()
}
