package main

import "github.com/agrishield/identity/cmd/authctl/cmd"

func main() {
	cmd.Execute()
}
