package main

import "github.com/rcorre/lasr/internal/cli"

func main() {
	cli.Execute()
}
