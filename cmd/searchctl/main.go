package main

import "github.com/nfrund/semsearch/cmd/searchctl/cmd"

func main() {
	cmd.Execute()
}
