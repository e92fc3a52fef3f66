package main

import "github.com/Sena-ops/sentrius/cmd"

func main() {
	cmd.Execute()
}
