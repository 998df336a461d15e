package provider

import (
	"context"
	"errors"
	"time"

	"github.com/vinod-soni-microsoft/foundry-model-router-care-triage/config"
	foundry_provider "github.com/vinod-soni-microsoft/foundry-model-router-care-triage/provider/foundry"
)

// Client represents different model-router backends
type Client string

const (
	Foundry Client = "foundry"
)

// Message is a single turn handed to the backend. ImageURL, when set, is sent
// as an inline image content part alongside the text (vision requests).
type Message = foundry_provider.Message

// Options control a single completion call.
type Options = foundry_provider.Options

// Usage reports token consumption for one completion.
type Usage = foundry_provider.Usage

// Completion is the backend's answer plus its telemetry.
type Completion = foundry_provider.Completion

// Backend is the interface every model-router implementation must satisfy.
type Backend interface {
	Chat(ctx context.Context, messages []Message, opts Options) (Completion, error)
}

// NewBackend creates a model-router client based on the provided configuration.
func NewBackend(client Client, cfg config.ProviderConfig) (Backend, error) {
	switch client {
	case Foundry:
		if cfg.APIKey == "" {
			return nil, errors.New("provider api key not set")
		}
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		return foundry_provider.NewClient(cfg.Endpoint, cfg.APIKey, cfg.APIVersion, timeout), nil
	default:
		return nil, errors.New("unsupported backend provider")
	}
}
