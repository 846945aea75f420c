package main

import (
	"os"

	"github.com/angelmondragon/gasflow-backend/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
