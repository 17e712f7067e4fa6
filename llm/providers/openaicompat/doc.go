// Package openaicompat provides the shared wire format for all
// OpenAI-compatible providers.
//
// OpenAI and Grok share the same API format (Chat Completions). Instead of
// duplicating message conversion, response extraction and error mapping in
// each adapter, they embed openaicompat.Adapter and only override what differs:
//
//   - Provider name, models and default model
//   - Base URL
//   - Custom headers (if any)
//   - Request hooks for provider-specific settings
//
// Usage:
//
//	a := openaicompat.New(openaicompat.Config{
//	    ProviderName: "grok",
//	    BaseURL:      "https://api.x.ai",
//	    Models:       []string{"grok-beta"},
//	    DefaultModel: "grok-beta",
//	})
package openaicompat
