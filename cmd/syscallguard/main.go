package main

import "github.com/hed1ad/syscallguard/pkg/cmd"

func main() {
	cmd.Execute()
}
