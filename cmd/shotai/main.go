package main

import (
	"github.com/MeKo-Tech/shotai/cmd/shotai/cmd"
)

func main() {
	cmd.Execute()
}
