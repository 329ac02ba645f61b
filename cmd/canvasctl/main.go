package main

import "github.com/canvasops/canvasctl/cmd"

func main() {
	cmd.Execute()
}
