package core

import (
	"context"
	"errors"
	"sync"
	"time"
)

type call struct {
	model  string
	prompt string
}

// scriptedGenerator answers each call with the next reply for the model, repeating the last one
type scriptedGenerator struct {
	mu      sync.Mutex
	replies map[string][]reply
	calls   []call
}

type reply struct {
	text string
	err  error
}

func newScriptedGenerator() *scriptedGenerator {
	return &scriptedGenerator{replies: map[string][]reply{}}
}

func (g *scriptedGenerator) on(model string, replies ...reply) *scriptedGenerator {
	g.replies[model] = append(g.replies[model], replies...)
	return g
}

func (g *scriptedGenerator) Generate(_ context.Context, model, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, call{model: model, prompt: prompt})
	queue := g.replies[model]
	if len(queue) == 0 {
		return "", errors.New("no reply scripted for " + model)
	}
	r := queue[0]
	if len(queue) > 1 {
		g.replies[model] = queue[1:]
	}
	return r.text, r.err
}

func (g *scriptedGenerator) models() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]string, 0, len(g.calls))
	for _, c := range g.calls {
		out = append(out, c.model)
	}
	return out
}

// generatorFunc adapts a function to Generator
type generatorFunc func(ctx context.Context, model, prompt string) (string, error)

func (f generatorFunc) Generate(ctx context.Context, model, prompt string) (string, error) {
	return f(ctx, model, prompt)
}

// recordingSleeper records requested delays without sleeping
type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
	err    error
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	if s.err != nil {
		return s.err
	}
	return ctx.Err()
}

type fakeSource struct {
	emails []RawEmail
	err    error
	calls  int
}

func (s *fakeSource) Fetch(context.Context, []string, int) ([]RawEmail, error) {
	s.calls++
	return s.emails, s.err
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*CacheEntry
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]*CacheEntry{}}
}

func (c *memoryCache) Get(_ context.Context, key string) (*CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e, nil
	}
	return nil, ErrCacheMiss
}

func (c *memoryCache) Set(_ context.Context, entry *CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.Key] = entry
	c.sets++
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memoryCache) Cleanup(context.Context) error { return nil }

type recordingNotifier struct {
	results []*Result
	err     error
}

func (n *recordingNotifier) Name() string { return "recording" }

func (n *recordingNotifier) Notify(ctx context.Context, result *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.results = append(n.results, result)
	return n.err
}

func unavailable(model string) reply {
	return reply{err: &ServiceError{Provider: "test", Model: model, StatusCode: 503}}
}
