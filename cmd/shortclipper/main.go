package main

import "github.com/jipraks/shortclipper/internal/cli"

func main() {
	cli.Main()
}
