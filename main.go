package main

import "github.com/gellab/graphlog/cmd"

func main() {
	cmd.Execute()
}
