package keypool

import (
	"slices"
	"sync"
)

// Pool раздаёт ключи API по кругу
type Pool struct {
	mu     sync.Mutex
	keys   []string
	cursor int
}

func New(keys []string) *Pool {
	return &Pool{keys: slices.Clone(keys)}
}

// Acquire следующий ключ. false, если ключей нет.
func (p *Pool) Acquire() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.keys) == 0 {
		return "", false
	}
	key := p.keys[p.cursor%len(p.keys)]
	p.cursor = (p.cursor + 1) % len(p.keys)
	return key, true
}

// Replace подменяет набор ключей и сбрасывает курсор
func (p *Pool) Replace(keys []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.keys = slices.Clone(keys)
	p.cursor = 0
}

func (p *Pool) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.keys)
}
