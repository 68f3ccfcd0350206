// Package random generates randomized test values: names, passwords, amounts
// and complete accounts.
package random

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Alphabets used by the generators.
const (
	// NameAlphabet is allowed in delegate names and usernames.
	NameAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@$&_."

	// AppNameAlphabet is allowed in application names.
	AppNameAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	passwordAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// Length bounds, upper bound exclusive.
const (
	MinNameLength          = 1
	MaxDelegateNameSize    = 20
	MaxUsernameSize        = 16
	MaxApplicationNameSize = 32
)

// Normalizer converts a whole-coin amount into base units.
const Normalizer int64 = 100_000_000

// Amount bounds in base units.
const (
	MinArk       = 10 * Normalizer
	ArkSpan      = 100 * Normalizer
	MaxStaticArk = 100_000 * Normalizer
)

// Generator produces random values. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator creates a Generator with a fixed seed, for reproducible runs.
func NewGenerator(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// New creates a Generator seeded from the clock.
func New() *Generator {
	return NewGenerator(time.Now().UnixNano())
}

var defaultGenerator = New()

// Default returns the package-level generator.
func Default() *Generator {
	return defaultGenerator
}

func (g *Generator) int63n(n int64) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Int63n(n)
}

func (g *Generator) intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Intn(n)
}

// Number returns a random integer in [lo, hi). When hi <= lo it returns lo.
func (g *Generator) Number(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.intn(hi-lo)
}

// Selection returns a random index for a collection of the given length.
func (g *Generator) Selection(length int) int {
	if length <= 0 {
		return 0
	}
	return g.intn(length)
}

// String returns a random string of n characters drawn from alphabet.
func (g *Generator) String(n int, alphabet string) string {
	if n <= 0 || alphabet == "" {
		return ""
	}
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		sb.WriteByte(alphabet[g.intn(len(alphabet))])
	}
	return sb.String()
}

// DelegateName returns a delegate name of 1 to 19 characters.
func (g *Generator) DelegateName() string {
	return g.String(g.Number(MinNameLength, MaxDelegateNameSize), NameAlphabet)
}

// Username returns a username of 1 to 15 characters.
func (g *Generator) Username() string {
	return g.String(g.Number(MinNameLength, MaxUsernameSize), NameAlphabet)
}

// CapitalUsername returns a username starting with 'A', 1 to 15 characters.
func (g *Generator) CapitalUsername() string {
	size := g.Number(MinNameLength, MaxUsernameSize)
	return "A" + g.String(size-1, NameAlphabet)
}

// ApplicationName returns an alphanumeric name starting with 'A',
// 1 to 31 characters.
func (g *Generator) ApplicationName() string {
	size := g.Number(MinNameLength, MaxApplicationNameSize)
	return "A" + g.String(size-1, AppNameAlphabet)
}

// Ark returns a random amount in [10·10^8, 110·10^8) base units.
func (g *Generator) Ark() int64 {
	return g.int63n(ArkSpan) + MinArk
}

// StaticArk returns a random amount in [1, 100000·10^8] base units.
func (g *Generator) StaticArk() int64 {
	return g.int63n(MaxStaticArk) + 1
}

// Password returns a short lowercase alphanumeric password.
func (g *Generator) Password() string {
	return g.String(g.Number(4, 7), passwordAlphabet)
}

// Key returns a random key of m. It returns the zero value for an empty map.
func Key[K comparable, V any](g *Generator, m map[K]V) K {
	var zero K
	if len(m) == 0 {
		return zero
	}
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys[g.Selection(len(keys))]
}

// Value returns the value stored under a random key of m.
func Value[K comparable, V any](g *Generator, m map[K]V) V {
	return m[Key(g, m)]
}

// Property returns a random value of m, or a random key when needKey is set.
func Property[V any](g *Generator, m map[string]V, needKey bool) any {
	k := Key(g, m)
	if needKey {
		return k
	}
	return m[k]
}

// Pick returns a random element of items.
func Pick[T any](g *Generator, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[g.Selection(len(items))]
}

// DelegateName returns a delegate name using the default generator.
func DelegateName() string { return defaultGenerator.DelegateName() }

// Username returns a username using the default generator.
func Username() string { return defaultGenerator.Username() }

// CapitalUsername returns a capitalized username using the default generator.
func CapitalUsername() string { return defaultGenerator.CapitalUsername() }

// ApplicationName returns an application name using the default generator.
func ApplicationName() string { return defaultGenerator.ApplicationName() }

// Ark returns a random amount using the default generator.
func Ark() int64 { return defaultGenerator.Ark() }

// Password returns a password using the default generator.
func Password() string { return defaultGenerator.Password() }
