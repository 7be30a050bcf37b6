package main

import "github.com/aita/heapdb/cmd"

func main() {
	cmd.Execute()
}
