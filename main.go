package main

import "github.com/questguild/questguild/internal/cli"

func main() {
	cli.Execute()
}
