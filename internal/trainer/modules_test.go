package trainer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModule(t *testing.T) {
	cases := map[string]Module{
		"impromptu":             Impromptu,
		"Storytelling":          Storytelling,
		" conflict_resolution ": ConflictResolution,
		"Conflict Resolution":   ConflictResolution,
		"general feedback":      General,
		"GENERAL":               General,
	}
	for in, want := range cases {
		got, err := ParseModule(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseModule("debate")
	assert.True(t, errors.Is(err, ErrUnknownModule))
}

func TestModules(t *testing.T) {
	list := Modules()
	require.Len(t, list, 4)
	assert.Equal(t, Impromptu, list[0].ID)
	assert.Equal(t, General, list[3].ID)

	list[0].Title = "changed"
	assert.Equal(t, "Impromptu Speaking", Impromptu.Title())
	assert.Equal(t, "debate", Module("debate").Title())
}

func TestTraining(t *testing.T) {
	assert.True(t, Storytelling.Training())
	assert.False(t, General.Training())
	assert.False(t, Module("").Training())
}

func TestBuildPrompt(t *testing.T) {
	assert.Equal(t,
		"Provide structured feedback (clarity, tone, engagement scores out of 10) on my verbal clarity: I say um a lot",
		BuildPrompt(General, "ignored", "I say um a lot"))

	p := BuildPrompt(Storytelling, "Tell a short story about an unexpected adventure.", "Once upon a time")
	assert.Equal(t, "Topic: Tell a short story about an unexpected adventure.\n\n"+
		"Analyze the following response and provide structured feedback (clarity, tone, engagement scores out of 10) "+
		"on its clarity, structure, engagement, and effectiveness:\n\nOnce upon a time", p)

	noTopic := BuildPrompt(Impromptu, "  ", "x")
	assert.NotContains(t, noTopic, "Topic:")
}
