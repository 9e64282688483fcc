package main

import "github.com/gh-tking/mimecast-sdk/internal/cli"

func main() {
	cli.Execute()
}
