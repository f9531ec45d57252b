package main

import (
	"os"

	"tutor/cmd"
)

// @title        Tutor API
// @version      1.0
// @description  AI tutor chat and bookmark API
// @BasePath     /
func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
