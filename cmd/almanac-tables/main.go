package main

import "github.com/pfrederiksen/almanac-tables/internal/cli"

func main() {
	cli.Execute()
}
