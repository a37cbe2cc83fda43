package main

import "github.com/blinxlabs/blinx/cmd"

func main() {
	cmd.Execute()
}
