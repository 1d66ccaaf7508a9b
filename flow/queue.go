package flow

import (
	"strings"
	"sync"

	"github.com/lixenwraith/firehose/core"
)

// tokenQueue is a thread-safe FIFO of pending tokens
// Producers push from any goroutine while the tick pops
type tokenQueue struct {
	mu     sync.Mutex
	tokens []core.Token
	head   int
}

func newTokenQueue() *tokenQueue {
	return &tokenQueue{tokens: make([]core.Token, 0, 256)}
}

// push appends tokens in order
func (q *tokenQueue) push(tokens ...core.Token) {
	if len(tokens) == 0 {
		return
	}
	q.mu.Lock()
	q.tokens = append(q.tokens, tokens...)
	q.mu.Unlock()
}

// pop removes the oldest token
func (q *tokenQueue) pop() (core.Token, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head >= len(q.tokens) {
		return core.Token{}, false
	}
	tok := q.tokens[q.head]
	q.tokens[q.head] = core.Token{}
	q.head++

	// Reclaim consumed prefix once it dominates the backing array
	if q.head == len(q.tokens) {
		q.tokens = q.tokens[:0]
		q.head = 0
	} else if q.head > 1024 && q.head*2 > len(q.tokens) {
		n := copy(q.tokens, q.tokens[q.head:])
		clear(q.tokens[n:])
		q.tokens = q.tokens[:n]
		q.head = 0
	}
	return tok, true
}

func (q *tokenQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tokens) - q.head
}

func (q *tokenQueue) clear() {
	q.mu.Lock()
	clear(q.tokens)
	q.tokens = q.tokens[:0]
	q.head = 0
	q.mu.Unlock()
}

// Tokenize splits text on whitespace and tags each word
func Tokenize(text, tag string) []core.Token {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	tokens := make([]core.Token, len(words))
	for i, w := range words {
		tokens[i] = core.Token{Text: w, Tag: tag}
	}
	return tokens
}
