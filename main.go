package main

import "heapdb/pkg/cli"

func main() {
	cli.Execute()
}
