// chatstat - Chat Export Statistics
//
// chatstat parses exported chat histories into a message table and reports
// activity, vocabulary, sentiment and reply patterns.
package main

import (
	"os"

	"github.com/ccollicutt/chatstat/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
