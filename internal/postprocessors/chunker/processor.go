// Package chunker splits extracted text into sentence-aligned chunks that
// fit a token budget.
package chunker

import (
	"strings"

	"github.com/siddhantttt/context-iq/internal/core/ports/driven"
)

// DefaultTargetTokens is the default token budget per chunk.
const DefaultTargetTokens = 500

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// Processor groups period-delimited sentences into chunks.
//
// Sentences are accumulated greedily while the running token count stays
// within the budget. A sentence is never split, so a single sentence over
// the budget becomes a chunk on its own.
type Processor struct {
	tokenizer driven.Tokenizer
	target    int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithTargetTokens sets the token budget per chunk.
func WithTargetTokens(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.target = n
		}
	}
}

// New creates a new chunker processor counting tokens with tokenizer.
func New(tokenizer driven.Tokenizer, opts ...Option) *Processor {
	p := &Processor{
		tokenizer: tokenizer,
		target:    DefaultTargetTokens,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "tokens"
}

// TargetTokens returns the token budget per chunk.
func (p *Processor) TargetTokens() int {
	return p.target
}

// Chunk splits text into chunks, in order.
// Sentences end at '.'; each keeps its period and sentences within a chunk
// are joined by single spaces. Empty input produces no chunks.
func (p *Processor) Chunk(text string) []string {
	var (
		chunks  []string
		current []string
		tokens  int
	)

	for _, fragment := range strings.Split(text, ".") {
		sentence := strings.TrimSpace(fragment)
		if sentence == "" {
			continue
		}
		sentence += "."

		n := p.tokenizer.Count(sentence)
		if tokens+n > p.target && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = current[:0]
			tokens = 0
		}
		current = append(current, sentence)
		tokens += n
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}
