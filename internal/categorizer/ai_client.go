package categorizer

import "context"

// AIClient asks a language model to pick one of the allowed category names
// for a transaction. The answer is free text and is validated by the caller.
type AIClient interface {
	SuggestCategory(ctx context.Context, tx Transaction, allowed []string) (string, error)
}
