package main

import "github.com/nfrund/clashhub/cmd/clashhub-cli/cmd"

func main() {
	cmd.Execute()
}
