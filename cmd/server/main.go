package main

import "credvault/cmd/server/cmd"

func main() {
	cmd.Execute()
}
