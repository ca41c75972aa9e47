package objects

import (
	"regexp"
	"strconv"
	"sync"
)

// IDGenerator mints "{prefix}-{n}" ids. The counter only moves forward, so a
// value is never handed out twice.
type IDGenerator struct {
	mu      sync.Mutex
	prefix  string
	pattern *regexp.Regexp
	counter int
}

// NewIDGenerator returns a generator for prefix.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "obj"
	}
	return &IDGenerator{
		prefix:  prefix,
		pattern: regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + `-(\d+)$`),
	}
}

// Prefix returns the configured id prefix.
func (g *IDGenerator) Prefix() string {
	return g.prefix
}

// Next returns a fresh id.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return g.prefix + "-" + strconv.Itoa(g.counter)
}

// Observe advances the counter past the numeric suffix of an externally
// supplied id. Ids not matching the prefix pattern are ignored.
func (g *IDGenerator) Observe(id string) {
	match := g.pattern.FindStringSubmatch(id)
	if match == nil {
		return
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if n > g.counter {
		g.counter = n
	}
}

// Counter returns the high-water mark.
func (g *IDGenerator) Counter() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counter
}
