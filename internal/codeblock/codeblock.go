// Package codeblock scans text for triple-fenced code regions. The scan is
// pure and restartable: calling it repeatedly on a growing buffer is safe, and
// an unterminated fence yields no block rather than a partial one.
package codeblock

import "regexp"

// DefaultLanguage is used when a fence carries no language tag.
const DefaultLanguage = "plaintext"

// Lazy body match, so adjacent fences never merge into one block.
var fenceRegexp = regexp.MustCompile("(?s)```([a-zA-Z0-9_-]*)\n(.*?)```")

type Block struct {
	StartIndex int
	EndIndex   int
	Language   string
	Code       string
}

type Result struct {
	Text   string
	Blocks []Block
}

// Extract finds every well-formed fenced region in text, left to right,
// non-overlapping.
func Extract(text string) Result {
	res := Result{Text: text}
	for _, m := range fenceRegexp.FindAllStringSubmatchIndex(text, -1) {
		lang := text[m[2]:m[3]]
		if lang == "" {
			lang = DefaultLanguage
		}
		res.Blocks = append(res.Blocks, Block{
			StartIndex: m[0],
			EndIndex:   m[1],
			Language:   lang,
			Code:       text[m[4]:m[5]],
		})
	}
	return res
}

// Last returns the final block of r, or false when there is none.
func (r Result) Last() (Block, bool) {
	if len(r.Blocks) == 0 {
		return Block{}, false
	}
	return r.Blocks[len(r.Blocks)-1], true
}
