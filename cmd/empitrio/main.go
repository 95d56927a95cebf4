package main

import "github.com/tomgineer/empitrio/internal/cli"

func main() {
	cli.Execute()
}
