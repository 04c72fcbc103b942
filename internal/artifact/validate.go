package artifact

import (
	"encoding/json"
	"strings"

	"github.com/tgwatch/tgwatch/internal/errs"
)

// Metadata is the optional subset the account registry extracts from the
// uploaded .json artifact.
type Metadata struct {
	PhoneNumber string `json:"phone_number,omitempty"`
	Username    string `json:"username,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
}

// ValidateExtension rejects anything but the exact .session/.json pair.
func ValidateExtension(filename, want string) error {
	if !strings.HasSuffix(strings.ToLower(filename), want) {
		return errs.NewArtifactInvalid("expected a " + want + " file, got " + filename)
	}
	return nil
}

// ParseMetadata rejects artifacts whose JSON does not parse.
func ParseMetadata(data []byte) (Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return Metadata{}, errs.NewArtifactInvalid("metadata artifact is not valid JSON")
	}
	return m, nil
}
