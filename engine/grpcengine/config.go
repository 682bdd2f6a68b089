package grpcengine

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/perimeterx/marshmallow"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config is the engine connection configuration.
type Config struct {
	// Endpoint is the host:port the engine gateway listens on.
	Endpoint string `validate:"required,hostname_port" json:"endpoint"`
	// CallTimeoutSeconds caps a single remote call. 0 (the default)
	// means no local cap: a hanging engine call hangs the caller.
	CallTimeoutSeconds int `validate:"gte=0" json:"callTimeoutSeconds"`
	// MaxMessageBytes caps inbound response frames.
	MaxMessageBytes int `default:"67108864" validate:"gt=0" json:"maxMessageBytes"`
}

func (c *Config) UnmarshalJSON(data []byte) error {
	err := defaults.Set(c)
	if err != nil {
		return err
	}
	_, err = marshmallow.Unmarshal(data, c, marshmallow.WithExcludeKnownFieldsFromMap(true))
	if err != nil {
		return err
	}
	return validate.Struct(c)
}

// LoadConfig reads a JSON engine configuration from path.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading engine config: %w", err)
	}
	if err = json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing engine config: %w", err)
	}
	return cfg, nil
}
