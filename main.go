package main

import "proof/cmd"

func main() {
	cmd.Execute()
}
