package main

import "github.com/foomo/docsite-mcp/cmd"

func main() {
	cmd.Execute()
}
