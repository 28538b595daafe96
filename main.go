package main

import "ola/cmd"

func main() {
	cmd.Execute()
}
