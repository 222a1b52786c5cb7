package main

import "github.com/Tiliavir/auto-time-tracker/cmd"

func main() {
	cmd.Execute()
}
