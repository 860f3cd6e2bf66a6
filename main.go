package main

import "github.com/N16ht0wl/Electricity-Meter-Measurement-Program/cmd"

func main() {
	cmd.Execute()
}
