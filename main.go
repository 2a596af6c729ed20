package main

import (
	"github.com/joho/godotenv"

	"github.com/OriginOfChaos/Bearathon5/internal/cli"
)

func main() {
	_ = godotenv.Load()
	cli.Execute()
}
