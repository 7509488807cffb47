package main

import "github.com/asaidimu/go-tabula/cli"

func main() {
	cli.Execute()
}
