package main

import "github.com/pfrederiksen/community-site/internal/cli"

func main() {
	cli.Execute()
}
