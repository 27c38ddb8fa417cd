package postprocessors

import (
	"fmt"

	"github.com/siddhantttt/context-iq/internal/core/ports/driven"
	"github.com/siddhantttt/context-iq/internal/postprocessors/chunker"
)

// TokenChunker is the name of the sentence-packing, token-budgeted chunker.
const TokenChunker = "tokens"

// RegisterDefaults registers all built-in chunkers with the registry.
func RegisterDefaults(r *Registry) {
	r.Register(TokenChunker, buildTokenChunker)
}

// buildTokenChunker loads the tokenizer for cfg.Model and packs sentences
// up to cfg.TargetTokens.
func buildTokenChunker(cfg Config) (driven.Chunker, error) {
	if cfg.TargetTokens < 0 {
		return nil, fmt.Errorf("chunker: negative target tokens %d", cfg.TargetTokens)
	}

	tokenizer, err := chunker.NewTokenizerForModel(cfg.Model)
	if err != nil {
		return nil, err
	}

	var opts []chunker.Option
	if cfg.TargetTokens > 0 {
		opts = append(opts, chunker.WithTargetTokens(cfg.TargetTokens))
	}
	return chunker.New(tokenizer, opts...), nil
}
