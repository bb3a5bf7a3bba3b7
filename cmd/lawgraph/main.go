package main

import "github.com/s-hayashi/lawgraph/internal/cli"

func main() {
	cli.Execute()
}
