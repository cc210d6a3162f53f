package main

import "github.com/yz4230/retrigger/cmd"

func main() {
	cmd.Execute()
}
