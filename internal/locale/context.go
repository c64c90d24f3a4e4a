package locale

import (
	"context"
	"os"
	"strings"
	"sync"
)

type contextKey struct{}

// WithLocale returns a context carrying tag as the default locale for the
// values built, formatted or parsed under it
func WithLocale(ctx context.Context, tag Tag) context.Context {
	return context.WithValue(ctx, contextKey{}, tag)
}

// FromContext returns the context's default locale, or None
func FromContext(ctx context.Context) Tag {
	if ctx == nil {
		return None
	}
	if tag, ok := ctx.Value(contextKey{}).(Tag); ok {
		return tag
	}
	return None
}

// Resolve picks the first non-empty tag in order: the value's own tag, the
// context default, then each fallback. It returns None when all are empty;
// callers decide whether to probe the system.
func Resolve(ctx context.Context, own Tag, fallbacks ...Tag) Tag {
	if own != None {
		return own
	}
	if tag := FromContext(ctx); tag != None {
		return tag
	}
	for _, tag := range fallbacks {
		if tag != None {
			return tag
		}
	}
	return None
}

// Store maps execution-context identities (request IDs, job IDs) to their
// default locale. Each identity only ever sees its own entry.
type Store struct {
	mu      sync.RWMutex
	locales map[string]Tag
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{locales: make(map[string]Tag)}
}

// Set records tag for id and returns the previous value
func (s *Store) Set(id string, tag Tag) Tag {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.locales[id]
	s.locales[id] = tag
	return prev
}

// Get returns the tag recorded for id, or None
func (s *Store) Get(id string) Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locales[id]
}

// Delete forgets id; identities may be recycled so callers clear them when done
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locales, id)
}

// Len returns the number of live identities
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.locales)
}

// Detect probes the host locale environment (LC_ALL, LC_TIME, LANG).
// Persian environments yield Persian, anything else yields English.
func Detect() Tag {
	return DetectFrom(os.Getenv)
}

// DetectFrom is Detect with an injectable environment lookup
func DetectFrom(getenv func(string) string) Tag {
	for _, key := range []string{"LC_ALL", "LC_TIME", "LANG"} {
		value := strings.TrimSpace(getenv(key))
		if value == "" || value == "C" || value == "POSIX" {
			continue
		}
		if Tag(value).IsPersian() {
			return Persian
		}
		return English
	}
	return English
}
