package chunker

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"

	"github.com/siddhantttt/context-iq/internal/core/ports/driven"
)

// DefaultEncoding is the BPE encoding used by the text-embedding-3 models.
const DefaultEncoding = "cl100k_base"

// Ensure Tokenizer implements the interface.
var _ driven.Tokenizer = (*Tokenizer)(nil)

var loaderOnce sync.Once

// useOfflineLoader makes tiktoken read its BPE ranks from the embedded
// loader instead of downloading them.
func useOfflineLoader() {
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})
}

// Tokenizer counts tokens with an OpenAI BPE encoding.
type Tokenizer struct {
	mu   sync.Mutex
	enc  *tiktoken.Tiktoken
	name string
}

// NewTokenizer loads the named encoding. Empty uses DefaultEncoding.
func NewTokenizer(encoding string) (*Tokenizer, error) {
	useOfflineLoader()

	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("chunker: load encoding %s: %w", encoding, err)
	}
	return &Tokenizer{enc: enc, name: encoding}, nil
}

// NewTokenizerForModel loads the encoding the given model uses, falling
// back to DefaultEncoding for models tiktoken does not know (e.g. Ollama
// models, which are budgeted with the same family).
func NewTokenizerForModel(model string) (*Tokenizer, error) {
	useOfflineLoader()

	if encoding, ok := tiktoken.MODEL_TO_ENCODING[model]; ok {
		return NewTokenizer(encoding)
	}
	return NewTokenizer(DefaultEncoding)
}

// Count returns the number of tokens in text.
func (t *Tokenizer) Count(text string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.enc.Encode(text, nil, nil))
}

// Name returns the encoding name.
func (t *Tokenizer) Name() string {
	return t.name
}
