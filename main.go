package main

import "github.com/trikv-io/triKV/cmd"

func main() {
	cmd.Execute()
}
