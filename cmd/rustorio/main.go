package main

import (
	"github.com/Nadrieril/rustorio/internal/adapters/cli"
)

func main() {
	cli.Execute()
}
