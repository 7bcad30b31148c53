package normalize

import "fmt"

// CodeRegistry hands out project codes that are unique within one run.
// Synthesized codes share a one-second clock, so two rows without a code in
// the same second would otherwise collide.
type CodeRegistry struct {
	seen map[string]int
}

// NewCodeRegistry returns an empty registry.
func NewCodeRegistry() *CodeRegistry {
	return &CodeRegistry{seen: make(map[string]int)}
}

// Claim returns code unchanged the first time it is seen and code-2,
// code-3, ... afterwards.
func (c *CodeRegistry) Claim(code string) string {
	n := c.seen[code]
	c.seen[code] = n + 1
	if n == 0 {
		return code
	}
	for i := n + 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d", code, i)
		if _, taken := c.seen[candidate]; !taken {
			c.seen[candidate] = 1
			return candidate
		}
	}
}

// Len returns the number of distinct codes handed out.
func (c *CodeRegistry) Len() int {
	return len(c.seen)
}
