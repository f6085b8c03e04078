package config

import (
	"strings"

	"google.golang.org/api/option"
)

// ClientOptions picks inline JSON credentials over a credentials file. With
// neither set the Google clients fall back to application default
// credentials, or to the emulator when PUBSUB_EMULATOR_HOST is exported.
func (g GCPConfig) ClientOptions() []option.ClientOption {
	switch {
	case strings.TrimSpace(g.CredentialsJSON) != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(g.CredentialsJSON))}
	case strings.TrimSpace(g.ApplicationCredentials) != "":
		return []option.ClientOption{option.WithCredentialsFile(g.ApplicationCredentials)}
	default:
		return nil
	}
}
