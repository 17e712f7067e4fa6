package types

import "fmt"

// UserMessage returns one human readable sentence describing err.
// The result depends only on the code; the provider name is interpolated when known.
func UserMessage(err *Error) string {
	if err == nil {
		return ""
	}
	provider := err.Provider
	if provider == "" {
		provider = "the provider"
	}

	switch err.Code {
	case ErrAuthentication:
		return fmt.Sprintf("Authentication with %s failed; the API key is missing, invalid or lacks permission.", provider)
	case ErrRateLimit:
		return fmt.Sprintf("%s is rate limiting requests right now.", capitalize(provider))
	case ErrTimeout:
		return fmt.Sprintf("The request to %s took too long and was stopped.", provider)
	case ErrContentFilter:
		return fmt.Sprintf("%s declined to answer because the content was flagged by its safety filters.", capitalize(provider))
	case ErrNetwork:
		return fmt.Sprintf("Could not reach %s because of a network problem.", provider)
	case ErrAPI:
		return fmt.Sprintf("%s returned an error: %s", capitalize(provider), err.Message)
	case ErrInvalidModel:
		return fmt.Sprintf("The selected model is not available for %s.", provider)
	case ErrUnsupportedOperation:
		return fmt.Sprintf("This operation is not supported by %s.", provider)
	default:
		return "An unexpected error occurred."
	}
}

var suggestionsByCode = map[ErrorCode][]string{
	ErrAuthentication: {
		"Check that the API key is entered correctly.",
		"Make sure the key is active and has access to this model.",
		"Generate a new key in the provider console if the problem persists.",
	},
	ErrRateLimit: {
		"Wait a moment before sending another message.",
		"Check the usage limits and billing status of your account.",
		"Switch to another provider or model in the meantime.",
	},
	ErrTimeout: {
		"Try again; the service may be under heavy load.",
		"Shorten the conversation or the requested answer length.",
	},
	ErrContentFilter: {
		"Rephrase the message and try again.",
		"Remove content that may violate the provider's usage policy.",
	},
	ErrNetwork: {
		"Check your internet connection.",
		"Verify that a firewall or proxy is not blocking the provider.",
		"Try again in a few moments.",
	},
	ErrAPI: {
		"Try again in a few moments.",
		"Check the provider status page for ongoing incidents.",
	},
	ErrInvalidModel: {
		"Pick one of the models listed for this provider.",
		"Check that your account has access to the selected model.",
	},
	ErrUnsupportedOperation: {
		"Use a provider that supports this feature.",
		"Disable streaming and send the message normally.",
	},
	ErrUnknown: {
		"Try again.",
		"Restart the conversation if the problem persists.",
	},
}

// Suggestions returns ordered remediation hints for err.
func Suggestions(err *Error) []string {
	if err == nil {
		return nil
	}
	hints, ok := suggestionsByCode[err.Code]
	if !ok {
		hints = suggestionsByCode[ErrUnknown]
	}
	out := make([]string, len(hints))
	copy(out, hints)
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
