package main

import (
	"os"

	"github.com/couchcryptid/route-risk-service/cmd/routerisk/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
