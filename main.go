package main

import "github.com/iksnae/session-feed/cmd"

func main() {
	cmd.Execute()
}
