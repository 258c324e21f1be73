package templates

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestExamplesIndent(t *testing.T) {
	out := Examples(`
		# one-shot question
		oraclectl chat "What's the weather in Paris?"`)
	assert.Equal(t, "  # one-shot question\n  oraclectl chat \"What's the weather in Paris?\"", out)
}

func TestCommandGroupsAdd(t *testing.T) {
	root := &cobra.Command{Use: "root"}
	child := &cobra.Command{Use: "chat"}
	groups := CommandGroups{{Message: "Basic Commands:", Commands: []*cobra.Command{child}}}
	groups.Add(root)

	assert.True(t, groups.Has(child))
	assert.Equal(t, "basic-commands", child.GroupID)
	assert.Len(t, root.Commands(), 1)
}
