package main

import (
	"fmt"
	"os"

	"github.com/southerncoder/my-Trading-Agents-sub007/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
