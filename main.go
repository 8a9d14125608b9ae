package main

import "github.com/mj1618/uitree/cmd"

func main() {
	cmd.Execute()
}
