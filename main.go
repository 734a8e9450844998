package main

import "github.com/m1rl0k/findingsengine/cmd"

func main() {
	cmd.Execute()
}
