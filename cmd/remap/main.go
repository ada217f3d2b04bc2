package main

import "github.com/kates/vector/cmd/remap/commands"

func main() {
	commands.Execute()
}
