package main

import (
	"context"
	"os"

	"gastos/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background()))
}
