package codeblock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSingleBlock(t *testing.T) {
	res := Extract("here\n```js\nconsole.log(1)\n```\nend")

	require.Len(t, res.Blocks, 1)
	assert.Equal(t, "js", res.Blocks[0].Language)
	assert.Equal(t, "console.log(1)\n", res.Blocks[0].Code)
}

func TestExtractRoundTrip(t *testing.T) {
	before := "some prose "
	after := " trailing prose"
	fence := "```go\nfunc main() {}\n```"
	text := before + fence + after

	res := Extract(text)

	require.Len(t, res.Blocks, 1)
	b := res.Blocks[0]
	assert.Equal(t, "go", b.Language)
	assert.Equal(t, "func main() {}\n", b.Code)
	assert.Equal(t, len(before), b.StartIndex)
	assert.Equal(t, len(before)+len(fence), b.EndIndex)
	assert.Equal(t, fence, text[b.StartIndex:b.EndIndex])
	assert.Equal(t, text, res.Text)
}

func TestExtractNoLanguageDefaults(t *testing.T) {
	res := Extract("```\nplain stuff\n```")

	require.Len(t, res.Blocks, 1)
	assert.Equal(t, DefaultLanguage, res.Blocks[0].Language)
	assert.Equal(t, "plain stuff\n", res.Blocks[0].Code)
}

func TestExtractMultipleBlocks(t *testing.T) {
	res := Extract("```py\na = 1\n```\nmiddle\n```js\nlet b = 2\n```")

	require.Len(t, res.Blocks, 2)
	assert.Equal(t, "py", res.Blocks[0].Language)
	assert.Equal(t, "a = 1\n", res.Blocks[0].Code)
	assert.Equal(t, "js", res.Blocks[1].Language)
	assert.Equal(t, "let b = 2\n", res.Blocks[1].Code)
	assert.Less(t, res.Blocks[0].EndIndex, res.Blocks[1].StartIndex)
}

func TestExtractUnterminatedFence(t *testing.T) {
	res := Extract("look:\n```rust\nfn main() {")

	assert.Empty(t, res.Blocks)
}

func TestExtractIdempotent(t *testing.T) {
	text := "a\n```js\nx\n```\nb"

	first := Extract(text)
	second := Extract(first.Text)

	assert.Equal(t, first, second)
}

// A prefix of a growing buffer must never report a block whose closing fence
// lies beyond the prefix.
func TestExtractPrefixSafety(t *testing.T) {
	full := "intro\n```ts\nconst x = 1\nconst y = 2\n```\ntail"
	fullBlocks := Extract(full).Blocks
	require.Len(t, fullBlocks, 1)
	closeAt := fullBlocks[0].EndIndex

	for i := 0; i <= len(full); i++ {
		prefix := full[:i]
		for _, b := range Extract(prefix).Blocks {
			assert.LessOrEqual(t, b.EndIndex, i)
			if i < closeAt {
				t.Errorf("prefix of length %d reported a block closed at %d", i, b.EndIndex)
			}
		}
	}
}

func TestLast(t *testing.T) {
	_, ok := Extract("no fences here").Last()
	assert.False(t, ok)

	last, ok := Extract("```a\n1\n```\n```b\n2\n```").Last()
	require.True(t, ok)
	assert.Equal(t, "b", last.Language)
}
