package main

import (
	"fmt"
	"os"
)

func main() {
	civCmd.AddCommand(initCmd)
	civCmd.AddCommand(versionCmd)
	if err := civCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
