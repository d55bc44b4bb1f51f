package main

import "romrelease/cmd"

func main() {
	cmd.Execute()
}
