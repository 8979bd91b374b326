package main

import (
	"os"

	"github.com/cholinyo/chatbot-comparador/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
