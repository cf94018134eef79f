package main

import "github.com/pfrederiksen/matchcentre/internal/cli"

func main() {
	cli.Execute()
}
