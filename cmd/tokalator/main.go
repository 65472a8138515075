package main

import "github.com/ogulcanaydogan/tokalator/internal/cli"

func main() {
	cli.Execute()
}
