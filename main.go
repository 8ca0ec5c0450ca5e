package main

import "github.com/user/kubevalid/cmd"

func main() {
	cmd.Execute()
}
