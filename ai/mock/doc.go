// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.TextGenerator,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	gen := mock.NewMockGenerator()
//	gen.DialogueTurnFunc = func(ctx context.Context, req ai.DialogueRequest) (*ai.DialogueReply, error) {
//	    return &ai.DialogueReply{Reply: "What's your evidence?"}, nil
//	}
//	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), gen)
//
//	// Check call counts
//	count := gen.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: Returns deterministic unit vectors based on text hash
//   - MockGenerator: Echoes inputs back as generated text and proposes nothing
//   - MockProvider: Aggregates mock embedder and generator
package mock
