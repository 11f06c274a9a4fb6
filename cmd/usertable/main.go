// Command usertable manages users through the users API.
package main

import (
	"fmt"
	"os"

	"github.com/manvel7/Antd-small-test/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
