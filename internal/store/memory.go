package store

import (
	"context"
	"fmt"
	"sync"
)

// ClaimScript is the canonical atomic claim script: pop the oldest
// envelope from the inbox list and, if one exists, record it in the
// pipeline hash under a fresh pipeline id. KEYS[1] is the inbox list key,
// KEYS[2] is the pipeline hash key, ARGV[1] is the fresh pipeline id.
//
// This is real Redis Lua, run through redis.call so EVAL can execute it
// server-side. redis.call returns false, not nil, for a missing element,
// so the emptiness check is a truthiness test rather than a nil compare.
//
// RedisAdapter hands this string to Redis's EVAL verbatim, which is where
// the claim's atomicity actually comes from. MemoryAdapter recognizes it
// by identity and executes the equivalent sequence under its single
// mutex, since there is no embedded Lua interpreter to delegate to.
const ClaimScript = `
local result = redis.call('LPOP', KEYS[1])
if result then redis.call('HSET', KEYS[2], ARGV[1], result) end
return result
`

// MemoryAdapter is an in-process, map-backed Adapter used by tests. It
// satisfies the same concurrency contract as RedisAdapter: every operation
// is safe to call from multiple goroutines.
type MemoryAdapter struct {
	mu sync.Mutex

	lists  map[string][][]byte
	hashes map[string]map[string][]byte

	subsMu sync.Mutex
	subs   map[string][]chan string
}

// NewMemoryAdapter creates an empty in-process store adapter.
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		lists:  make(map[string][][]byte),
		hashes: make(map[string]map[string][]byte),
		subs:   make(map[string][]chan string),
	}
}

func (m *MemoryAdapter) ListPushTail(_ context.Context, key string,
	value []byte) error {

	m.mu.Lock()
	defer m.mu.Unlock()

	m.lists[key] = append(m.lists[key], value)
	return nil
}

func (m *MemoryAdapter) ListPushHead(_ context.Context, key string,
	value []byte) error {

	m.mu.Lock()
	defer m.mu.Unlock()

	m.lists[key] = append([][]byte{value}, m.lists[key]...)
	return nil
}

func (m *MemoryAdapter) ListPopHead(_ context.Context,
	key string) ([]byte, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.popHeadLocked(key), nil
}

func (m *MemoryAdapter) popHeadLocked(key string) []byte {
	list := m.lists[key]
	if len(list) == 0 {
		return nil
	}

	v := list[0]
	m.lists[key] = list[1:]
	return v
}

func (m *MemoryAdapter) ListPopTail(_ context.Context,
	key string) ([]byte, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.lists[key]
	if len(list) == 0 {
		return nil, nil
	}

	v := list[len(list)-1]
	m.lists[key] = list[:len(list)-1]
	return v, nil
}

func (m *MemoryAdapter) ListLength(_ context.Context,
	key string) (int, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.lists[key]), nil
}

func (m *MemoryAdapter) HashSet(_ context.Context, key, field string,
	value []byte, policy OverwritePolicy) error {

	m.mu.Lock()
	defer m.mu.Unlock()

	m.setHashLocked(key, field, value, policy)
	return nil
}

func (m *MemoryAdapter) setHashLocked(key, field string, value []byte,
	policy OverwritePolicy) {

	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string][]byte)
		m.hashes[key] = h
	}

	if policy == OverwriteIfAbsent {
		if _, exists := h[field]; exists {
			return
		}
	}
	h[field] = value
}

func (m *MemoryAdapter) HashGet(_ context.Context, key,
	field string) ([]byte, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.hashes[key][field], nil
}

func (m *MemoryAdapter) HashDelete(_ context.Context, key, field string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.hashes[key], field)
	return nil
}

func (m *MemoryAdapter) HashScan(_ context.Context,
	key string) (map[string][]byte, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string][]byte, len(m.hashes[key]))
	for field, value := range m.hashes[key] {
		out[field] = value
	}
	return out, nil
}

// Eval executes script atomically. Only ClaimScript is understood; any
// other script is an error, since MemoryAdapter has no general scripting
// engine (it stands in for one, narrowly, per the single script the core
// requires).
func (m *MemoryAdapter) Eval(_ context.Context, script string,
	keys []string, args ...any) ([]byte, error) {

	if script != ClaimScript {
		return nil, fmt.Errorf("memory adapter: unsupported script")
	}
	if len(keys) != 2 || len(args) != 1 {
		return nil, fmt.Errorf("memory adapter: claim script arity mismatch")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	inboxKey, pipelineKey := keys[0], keys[1]

	result := m.popHeadLocked(inboxKey)
	if result == nil {
		return nil, nil
	}

	pipelineID, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("memory adapter: pipeline id must be string")
	}

	m.setHashLocked(pipelineKey, pipelineID, result, OverwriteAlways)
	return result, nil
}

func (m *MemoryAdapter) Publish(_ context.Context, channel,
	message string) error {

	m.subsMu.Lock()
	defer m.subsMu.Unlock()

	for _, ch := range m.subs[channel] {
		select {
		case ch <- message:
		default:
		}
	}
	return nil
}

func (m *MemoryAdapter) Subscribe(ctx context.Context, channel string,
	onMsg OnMessage) error {

	ch := make(chan string, 16)

	m.subsMu.Lock()
	m.subs[channel] = append(m.subs[channel], ch)
	m.subsMu.Unlock()

	go func() {
		defer m.unsubscribe(channel, ch)

		for {
			select {
			case payload := <-ch:
				onMsg(payload)
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// PeekList returns a copy of the list at key without removing anything.
// Test-only introspection; RedisAdapter has no equivalent because tests
// against a real Redis can just issue LRANGE directly.
func (m *MemoryAdapter) PeekList(key string) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([][]byte, len(m.lists[key]))
	copy(out, m.lists[key])
	return out
}

func (m *MemoryAdapter) unsubscribe(channel string, ch chan string) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()

	subs := m.subs[channel]
	for i, c := range subs {
		if c == ch {
			m.subs[channel] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
}
