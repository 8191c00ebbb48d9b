package main

import (
	"github.com/S35H47/Flight-Surety/cmd"
)

func main() {
	_ = cmd.RootCmd.Execute()
}
