package main

import "nusacloud/localstacker/cmd"

func main() {
	cmd.Execute()
}
