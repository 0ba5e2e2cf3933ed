package main

import "github.com/keurnel/x86decode/cmd/x86dump/cmd"

func main() {
	cmd.Execute()
}
