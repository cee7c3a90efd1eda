package main

import "github.com/sw33tLie/fundscope/cmd"

func main() {
	cmd.Execute()
}
