package scenario

import (
	"github.com/ternarybob/turngreen-e2e/internal/secure"
)

const (
	EnvEmail    = "FUSION_EMAIL"
	EnvPassword = "FUSION_PASSWORD"
)

// ValueSource resolves required configuration values. A missing or empty
// value is a models.ConfigurationError.
type ValueSource interface {
	RequiredValue(name string) (string, error)
}

// Credentials are the identity provider login of the test user.
type Credentials struct {
	Email    secure.Value
	Password secure.Value
}

// LoadCredentials reads the FusionAuth login from src.
func LoadCredentials(src ValueSource) (Credentials, error) {
	email, err := src.RequiredValue(EnvEmail)
	if err != nil {
		return Credentials{}, err
	}
	password, err := src.RequiredValue(EnvPassword)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{Email: secure.NewValue(email), Password: secure.NewValue(password)}, nil
}

// Values returns both credentials for masker registration.
func (c Credentials) Values() []secure.Value {
	return []secure.Value{c.Email, c.Password}
}
