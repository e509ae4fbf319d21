package main

import "github.com/Norgate-AV/talon/cmd"

func main() {
	cmd.Execute()
}
