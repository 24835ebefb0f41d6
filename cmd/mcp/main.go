package main

import (
	"fmt"
	"os"

	"github.com/iammorganparry/clive/apps/tasks/internal/mcp"
)

func main() {
	serverURL := os.Getenv("TASKS_SERVER_URL")
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}

	server := mcp.NewServer(serverURL)
	if err := server.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "mcp server error: %s\n", err)
		os.Exit(1)
	}
}
