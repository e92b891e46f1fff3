package main

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/example/seating-service/cmd"
)

func main() {
	cmd.Execute()
}
