// Package gemini implements [dataagent.Provider] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK, translating between dataagent's
// domain types and the Gemini API types. Streaming uses the SDK's iter.Seq2
// iterator, wrapped into the pull-based [dataagent.Stream] interface.
package gemini

const (
	// DefaultModel is the model used when neither the client nor the
	// request names one.
	DefaultModel     = "gemini-2.0-flash-lite"
	defaultMaxTokens = 8192
)
