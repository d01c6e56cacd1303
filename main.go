package main

import "upd765/cmd"

func main() {
	cmd.Execute()
}
