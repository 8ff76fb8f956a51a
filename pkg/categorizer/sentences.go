package categorizer

import (
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	log "github.com/sirupsen/logrus"
)

var (
	tokenizerOnce sync.Once
	tokenizer     *sentences.DefaultSentenceTokenizer
	tokenizerErr  error
)

func sentenceTokenizer() (*sentences.DefaultSentenceTokenizer, error) {
	tokenizerOnce.Do(func() {
		tokenizer, tokenizerErr = english.NewSentenceTokenizer(nil)
	})
	return tokenizer, tokenizerErr
}

// TruncateSentences keeps the first max sentences of text. max <= 0 keeps everything.
func TruncateSentences(text string, max int) string {
	if max <= 0 || strings.TrimSpace(text) == "" {
		return text
	}

	tok, err := sentenceTokenizer()
	if err != nil {
		log.Warnf("Failed to create sentence tokenizer, sending full text: %v", err)
		return text
	}

	sents := tok.Tokenize(text)
	if len(sents) <= max {
		return text
	}

	kept := make([]string, 0, max)
	for _, s := range sents[:max] {
		if t := strings.TrimSpace(s.Text); t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, " ")
}
