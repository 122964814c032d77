package main

import (
	"os"

	"pomodoro/zenpomo/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
