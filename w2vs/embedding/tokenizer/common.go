package tokenizer

import (
	"regexp"
	"strings"
)

var punctPattern = regexp.MustCompile(`[\d.:,"'()\[\]|/?!;]+`)

// Common splits on whitespace, strips digits and punctuation from every token
// and lowercases it. Tokens left empty are dropped.
type Common struct{}

func NewCommon() *Common { return &Common{} }

func (c *Common) Tokenize(text string) []string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := strings.ToLower(punctPattern.ReplaceAllString(f, ""))
		if tok == "" {
			continue
		}
		out = append(out, tok)
	}
	return out
}
