package main

import "github.com/Siasom1/gateseal-devnet/cmd/gateseal/cmd"

func main() {
	cmd.Execute()
}
