package feedback

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractScores(t *testing.T) {
	rec := Extract("Clarity Score: 8/10\nTone Score: 7/10\nEngagement Score: 9/10")

	assert.Equal(t, ScoreOf(8), rec.Score(Clarity))
	assert.Equal(t, ScoreOf(7), rec.Score(Tone))
	assert.Equal(t, ScoreOf(9), rec.Score(Engagement))
}

func TestExtractScores_NotAvailable(t *testing.T) {
	rec := Extract("Some random text. No scores here.")

	for _, d := range Dimensions {
		assert.False(t, rec.Score(d).Valid, "dimension %s", d)
		assert.Equal(t, "N/A", rec.Score(d).String())
	}
}

func TestExtractScores_Partial(t *testing.T) {
	rec := Extract("Clarity Score: 6/10\nSome other text.")

	assert.Equal(t, ScoreOf(6), rec.Score(Clarity))
	assert.Equal(t, NotAvailable(), rec.Score(Tone))
	assert.Equal(t, NotAvailable(), rec.Score(Engagement))
}

func TestExtractScores_UnparseableIsolated(t *testing.T) {
	rec := Extract("Clarity Score: high/10\nTone Score: 5/10\nEngagement Score: 4 / 10")

	assert.False(t, rec.Score(Clarity).Valid)
	assert.Equal(t, ScoreOf(5), rec.Score(Tone))
	assert.Equal(t, ScoreOf(4), rec.Score(Engagement))
}

func TestExtractScores_ZeroIsNotSentinel(t *testing.T) {
	rec := Extract("Tone score: 0/10")

	assert.True(t, rec.Score(Tone).Valid)
	assert.Equal(t, 0, rec.Score(Tone).Value)
	assert.Equal(t, "0", rec.Score(Tone).String())
}

func TestExtractScores_FirstMatchWins(t *testing.T) {
	rec := Extract("Clarity Score: 3/10\nlater: Clarity Score: 9/10")
	assert.Equal(t, ScoreOf(3), rec.Score(Clarity))

	rec = Extract("Clarity Score: n/a\nClarity Score: 9/10")
	assert.False(t, rec.Score(Clarity).Valid)
}

func TestExtractScores_MidSentenceAndCase(t *testing.T) {
	rec := Extract("I would put the ENGAGEMENT SCORE: 7/10 for this one")
	assert.Equal(t, ScoreOf(7), rec.Score(Engagement))
}

func TestExtractScores_OutOfRange(t *testing.T) {
	rec := Extract("Clarity Score: 12/10\nTone Score: -1/10")
	assert.False(t, rec.Score(Clarity).Valid)
	assert.False(t, rec.Score(Tone).Valid)
}

func TestExtractScores_LabelWithoutColon(t *testing.T) {
	rec := Extract("Clarity score 8/10")
	assert.False(t, rec.Score(Clarity).Valid)
}

func TestExtract_Scenario(t *testing.T) {
	rec := Extract("Strength: Good clarity.\nImprove: Be more concise.\nOverall: Solid effort.")

	assert.Equal(t, []string{"- Good clarity."}, rec.Strengths)
	assert.Equal(t, []string{"- Be more concise."}, rec.Improvements)
	assert.Equal(t, "Solid effort.", rec.Overall)
	assert.True(t, rec.HasStrengths())
	assert.True(t, rec.HasImprovements())
	assert.True(t, rec.HasOverall())
}

func TestExtractStrengths(t *testing.T) {
	rec := Extract("Strength: Good clarity.\nPositive: Well-structured.")
	assert.Equal(t, []string{"- Good clarity.", "- Well-structured."}, rec.Strengths)

	rec = Extract("No strengths mentioned.")
	assert.Equal(t, []string{NoStrengths}, rec.Strengths)
	assert.Equal(t, "- No specific strengths identified.", rec.Strengths[0])
	assert.False(t, rec.HasStrengths())
}

func TestExtractImprovements(t *testing.T) {
	rec := Extract("Improve: Use more concise language.\nArea: Consider varying your tone.")
	assert.Equal(t, []string{"- Use more concise language.", "- Consider varying your tone."}, rec.Improvements)

	rec = Extract("No improvements mentioned.")
	assert.Equal(t, []string{NoImprovements}, rec.Improvements)
}

func TestExtractOverall(t *testing.T) {
	rec := Extract("Overall: A solid performance.\nSummary: Good job!")
	assert.Equal(t, "A solid performance.\nGood job!", rec.Overall)

	rec = Extract("No overall feedback.")
	assert.Equal(t, NoOverall, rec.Overall)
	assert.False(t, rec.HasOverall())
}

func TestExtract_EmptyValuesDiscarded(t *testing.T) {
	rec := Extract("Strengths:\nStrength:   \nGood points: eye contact")
	assert.Equal(t, []string{"- eye contact"}, rec.Strengths)
}

func TestExtract_SplitsOnFirstColon(t *testing.T) {
	rec := Extract("Positive: timing: well paced")
	assert.Equal(t, []string{"- timing: well paced"}, rec.Strengths)
}

func TestExtract_EmptyInput(t *testing.T) {
	rec := Extract("")

	assert.Equal(t, []string{NoStrengths}, rec.Strengths)
	assert.Equal(t, []string{NoImprovements}, rec.Improvements)
	assert.Equal(t, NoOverall, rec.Overall)
	require.Len(t, rec.Scores, len(Dimensions))
}

func TestExtract_CrossCategoryDuplication(t *testing.T) {
	text := "Good pacing, but consider pauses: slow down before key points"

	rec := Extract(text)
	assert.Equal(t, []string{"- slow down before key points"}, rec.Strengths)
	assert.Equal(t, []string{"- slow down before key points"}, rec.Improvements)

	exclusive := &Extractor{Exclusive: true}
	rec = exclusive.Extract(text)
	assert.Equal(t, []string{NoStrengths}, rec.Strengths)
	assert.Equal(t, []string{"- slow down before key points"}, rec.Improvements)
}

func TestExtract_ExclusivePrefersOverall(t *testing.T) {
	rec := (&Extractor{Exclusive: true}).Extract("Overall summary of what went well: confident delivery")

	assert.Equal(t, "confident delivery", rec.Overall)
	assert.False(t, rec.HasStrengths())
}

func TestExtract_Deterministic(t *testing.T) {
	text := "Clarity Score: 8/10\nStrength: Good clarity.\nCould improve: pacing\nConclusion: keep going"

	first := Extract(text)
	second := Extract(text)
	assert.Equal(t, first, second)
}

func TestExtract_CRLF(t *testing.T) {
	rec := Extract("Clarity Score: 8/10\r\nStrength: Good clarity.\r\n")

	assert.Equal(t, ScoreOf(8), rec.Score(Clarity))
	assert.Equal(t, []string{"- Good clarity."}, rec.Strengths)
}

func TestScoreJSON(t *testing.T) {
	rec := Extract("Clarity Score: 8/10")

	data, err := json.Marshal(rec.Scores)
	require.NoError(t, err)
	assert.JSONEq(t, `{"clarity":8,"tone":null,"engagement":null}`, string(data))

	var back map[Dimension]Score
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, rec.Scores, back)
}

func TestScoreJSON_OutOfRangeIsNotAvailable(t *testing.T) {
	var scores map[Dimension]Score
	require.NoError(t, json.Unmarshal([]byte(`{"clarity":11,"tone":-1,"engagement":10}`), &scores))

	assert.Equal(t, NotAvailable(), scores[Clarity])
	assert.Equal(t, NotAvailable(), scores[Tone])
	assert.Equal(t, ScoreOf(10), scores[Engagement])
}
