package main

import "github.com/aouyang1/magicframe/cli"

func main() {
	cli.Execute()
}
