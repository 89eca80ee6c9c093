package internal

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/geoforest/billing/internal/auth"
	"github.com/geoforest/billing/internal/config"
)

// GenerateTriggerKey prints a new raw trigger key and the config entry for its hash
func GenerateTriggerKey() error {
	name := os.Getenv("KEY_NAME")
	if name == "" {
		name = "identity-trigger"
	}

	rawKey := auth.GenerateAPIKey()
	hashedKey := auth.HashAPIKey(rawKey)
	details := config.TriggerKeyDetails{
		Name:     name,
		IsActive: true,
	}

	jsonBytes, err := json.Marshal(map[string]config.TriggerKeyDetails{hashedKey: details})
	if err != nil {
		return err
	}

	fmt.Printf("\nNew trigger key generated:\n")
	fmt.Printf("Raw key (send it in x-trigger-key): %s\n", rawKey)
	fmt.Printf("\nAdd this to config.yaml under auth.trigger_keys:\n")
	fmt.Printf("%q:\n", hashedKey)
	fmt.Printf("  name: %q\n", details.Name)
	fmt.Printf("  is_active: %v\n", details.IsActive)
	fmt.Printf("\nOr set this environment variable:\n")
	fmt.Printf("GEOFOREST_AUTH_TRIGGER_KEYS='%s'\n", string(jsonBytes))
	return nil
}
