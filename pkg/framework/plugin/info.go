package plugin

import (
	"errors"
	"fmt"
	"strings"
)

// Info contains plugin metadata
type Info struct {
	ID          string // Unique plugin identifier (e.g., "com.example.postfx")
	Name        string // Display name
	Version     string // Semantic version (e.g., "1.0.0")
	Vendor      string // Company/developer name
	Description string
}

// Validate checks that the metadata can identify a plugin
func (i Info) Validate() error {
	if i.ID == "" {
		return errors.New("plugin ID cannot be empty")
	}
	if strings.ContainsAny(i.ID, " \t\n") {
		return fmt.Errorf("plugin ID %q contains whitespace", i.ID)
	}
	if i.Name == "" {
		return fmt.Errorf("plugin %s has no name", i.ID)
	}
	return nil
}

func (i Info) String() string {
	if i.Version == "" {
		return i.Name
	}
	return fmt.Sprintf("%s %s", i.Name, i.Version)
}
