package main

import "github.com/rustyeddy/sigmaguard/internal/cli"

func main() {
	cli.Execute()
}
