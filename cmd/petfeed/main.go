package main

import "petfeed/internal/cli"

func main() {
	cli.Execute()
}
