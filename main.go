package main

import "github.com/axiom-sh/axiom/cmd"

func main() {
	cmd.Execute()
}
