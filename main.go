package main

import "github.com/gaurav-prasanna/seopatch/cmd"

func main() {
	cmd.Execute()
}
