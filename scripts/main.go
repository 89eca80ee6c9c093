package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/geoforest/billing/scripts/internal"
)

// Command represents a script that can be run
type Command struct {
	Name        string
	Description string
	Run         func() error
}

var commands = []Command{
	{
		Name:        "generate-trigger-key",
		Description: "Generate a new identity trigger key",
		Run:         internal.GenerateTriggerKey,
	},
	{
		Name:        "dev-token",
		Description: "Sign a caller token for the jwt auth provider",
		Run:         internal.GenerateDevToken,
	},
}

func main() {
	var (
		listCommands bool
		cmdName      string
		userID       string
		email        string
		keyName      string
	)

	flag.BoolVar(&listCommands, "list", false, "List all available commands")
	flag.StringVar(&cmdName, "cmd", "", "Command to run")
	flag.StringVar(&userID, "user-id", "", "Account id for the token")
	flag.StringVar(&email, "user-email", "", "Email for the token")
	flag.StringVar(&keyName, "key-name", "", "Name recorded with the trigger key")

	flag.Parse()

	if listCommands {
		fmt.Println("Available commands:")
		for _, cmd := range commands {
			fmt.Printf("  %-22s %s\n", cmd.Name, cmd.Description)
		}
		return
	}

	if cmdName == "" {
		log.Fatal("Please specify a command to run using -cmd flag. Use -list to see available commands.")
	}

	if userID != "" {
		os.Setenv("USER_ID", userID)
	}
	if email != "" {
		os.Setenv("USER_EMAIL", email)
	}
	if keyName != "" {
		os.Setenv("KEY_NAME", keyName)
	}

	for _, cmd := range commands {
		if cmd.Name == cmdName {
			if err := cmd.Run(); err != nil {
				log.Fatalf("Command %s failed: %v", cmdName, err)
			}
			return
		}
	}

	log.Fatalf("Unknown command: %s", cmdName)
}
