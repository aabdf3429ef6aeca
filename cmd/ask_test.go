package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTagsMatchesWorkflowRules(t *testing.T) {
	got := normalizeTags([]string{"Foo", " foo ", "bar", ""})
	assert.Equal(t, []string{"foo", "bar"}, got)

	assert.Empty(t, normalizeTags(nil))
}
