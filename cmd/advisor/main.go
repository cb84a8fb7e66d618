// advisor is the local sourcing-restriction engine: it scans captured
// profile pages against the team rule set and serves the admin API.
package main

import (
	"os"

	"sourcing-advisor/cmd/advisor/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
