package main

import (
	_ "github.com/mattn/go-sqlite3"

	"github.com/criswit/moni-bridge/cmd"
)

func main() {
	cmd.Execute()
}
