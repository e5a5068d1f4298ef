package main

import "github.com/bashbros/bashbros/internal/cli"

func main() {
	cli.Execute()
}
