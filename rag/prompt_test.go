package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AnTengye/leasewise/model"
)

func TestBuildQAPrompt(t *testing.T) {
	ctx := JoinContext([]string{"Rent is $950.", "Pets are not allowed."})
	prompt := BuildQAPrompt(ctx, "Can I keep a cat?")

	assert.Contains(t, prompt, "Can I keep a cat?")
	assert.Contains(t, prompt, "Rent is $950.\n\n---\n\nPets are not allowed.")
	assert.Contains(t, prompt, "The lease text here does not clearly specify this.")
	assert.Equal(t, strings.TrimSpace(prompt), prompt)
}

func TestJoinContext(t *testing.T) {
	assert.Equal(t, "", JoinContext(nil))
	assert.Equal(t, "one", JoinContext([]string{"one"}))
	assert.Equal(t, "a"+ContextSeparator+"b", JoinContext([]string{"a", "b"}))
}

func TestBuildSummaryPrompt(t *testing.T) {
	prompt := BuildSummaryPrompt("LEASE BODY")
	assert.Contains(t, prompt, `"""LEASE BODY"""`)
	assert.Contains(t, prompt, "bullet points")
}

func TestBuildTermsPromptListsEveryKey(t *testing.T) {
	prompt := BuildTermsPrompt("LEASE BODY", model.TermKeys)

	for _, key := range model.TermKeys {
		assert.Contains(t, prompt, `- "`+key+`"`)
	}
	assert.Contains(t, prompt, "set its value to null")
	assert.Contains(t, prompt, `"""LEASE BODY"""`)
}

func TestBuildRedFlagPrompt(t *testing.T) {
	prompt := BuildRedFlagPrompt("LEASE BODY")

	for _, field := range []string{`"flags"`, `"id"`, `"title"`, `"severity"`, `"clause_text"`, `"explanation"`} {
		assert.Contains(t, prompt, field)
	}
	assert.Contains(t, prompt, `{ "flags": [] }`)
	assert.Contains(t, prompt, `"""LEASE BODY"""`)
}
