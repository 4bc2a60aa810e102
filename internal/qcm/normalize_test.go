package qcm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawItem(t *testing.T, s string) RawItem {
	t.Helper()
	var r RawItem
	require.NoError(t, json.Unmarshal([]byte(s), &r))
	return r
}

func TestNormalize_Valid(t *testing.T) {
	q, rej := Normalize(rawItem(t, `{
		"question": "  What is the powerhouse of the cell?  ",
		"choices": [" Mitochondria", "Nucleus ", "Ribosome", "Golgi apparatus", "Extra"],
		"correctIndex": 0,
		"explanation": " It produces ATP. "
	}`))
	require.Nil(t, rej)
	assert.Equal(t, "What is the powerhouse of the cell?", q.Question)
	assert.Equal(t, [NumChoices]string{"Mitochondria", "Nucleus", "Ribosome", "Golgi apparatus"}, q.Choices)
	assert.Equal(t, SingleAnswer(0), q.Correct)
	assert.Equal(t, "It produces ATP.", q.Explanation)
}

func TestNormalize_Rejections(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want RejectReason
	}{
		{"not an object", `"just text"`, RejectNotObject},
		{"null item", `null`, RejectNotObject},
		{"missing question", `{"choices":["a","b","c","d"]}`, RejectEmptyQuestion},
		{"blank question", `{"question":"   ","choices":["a","b","c","d"]}`, RejectEmptyQuestion},
		{"three choices", `{"question":"q","choices":["a","b","c"]}`, RejectChoiceCount},
		{"choices not a list", `{"question":"q","choices":"a,b,c,d"}`, RejectChoiceCount},
		{"empty choice", `{"question":"q","choices":["a","","c","d"]}`, RejectEmptyChoice},
		{"null choice", `{"question":"q","choices":["a","b",null,"d"]}`, RejectEmptyChoice},
		{"whitespace choice", `{"question":"q","choices":["a","b","c","  "]}`, RejectEmptyChoice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, rej := Normalize(rawItem(t, tt.raw))
			require.NotNil(t, rej)
			assert.Equal(t, tt.want, rej.Reason)
		})
	}
}

func TestNormalize_CorrectIndex(t *testing.T) {
	tests := []struct {
		name    string
		correct string
		want    Answer
	}{
		{"in range", `2`, SingleAnswer(2)},
		{"out of range", `4`, NoAnswer()},
		{"negative", `-1`, NoAnswer()},
		{"fractional", `1.5`, NoAnswer()},
		{"integral float", `3.0`, SingleAnswer(3)},
		{"null", `null`, NoAnswer()},
		{"string", `"1"`, NoAnswer()},
		{"object", `{"i":1}`, NoAnswer()},
		{"list", `[0, 2]`, MultipleAnswer(0, 2)},
		{"list filters and dedupes", `[1, 9, 1, "3", 2.5]`, MultipleAnswer(1, 3)},
		{"empty list", `[]`, NoAnswer()},
		{"list of junk", `[7, "x"]`, NoAnswer()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, rej := Normalize(rawItem(t, `{"question":"q","choices":["a","b","c","d"],"correctIndex":`+tt.correct+`}`))
			require.Nil(t, rej)
			assert.Equal(t, tt.want, q.Correct)
		})
	}
}

func TestNormalize_Coercion(t *testing.T) {
	q, rej := Normalize(rawItem(t, `{"question": 42, "choices": [1, 2.5, true, "x"]}`))
	require.Nil(t, rej)
	assert.Equal(t, "42", q.Question)
	assert.Equal(t, [NumChoices]string{"1", "2.5", "true", "x"}, q.Choices)
	assert.True(t, q.Correct.IsNone())
	assert.Equal(t, ExplanationPlaceholder, q.Explanation)

	q, rej = Normalize(rawItem(t, `{"question": false, "choices": [true, false, "Vrai", "Faux"], "explanation": null}`))
	require.Nil(t, rej)
	assert.Equal(t, "false", q.Question)
	assert.Equal(t, [NumChoices]string{"true", "false", "Vrai", "Faux"}, q.Choices)
	assert.Equal(t, ExplanationPlaceholder, q.Explanation)
}

func TestNormalize_Idempotent(t *testing.T) {
	first, rej := Normalize(rawItem(t, `{"question":" Q? ","choices":["a ","b","c","d"],"correctIndex":[3,1],"explanation":""}`))
	require.Nil(t, rej)

	data, err := json.Marshal(first)
	require.NoError(t, err)
	second, rej := Normalize(rawItem(t, string(data)))
	require.Nil(t, rej)
	assert.Equal(t, first, second)
}

func TestAnswer_JSON(t *testing.T) {
	tests := []struct {
		answer Answer
		want   string
	}{
		{SingleAnswer(1), `1`},
		{MultipleAnswer(2, 0), `[0,2]`},
		{NoAnswer(), `null`},
	}
	for _, tt := range tests {
		data, err := json.Marshal(tt.answer)
		require.NoError(t, err)
		assert.JSONEq(t, tt.want, string(data))

		var back Answer
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, tt.answer, back)
	}
}

func TestAnswer_String(t *testing.T) {
	assert.Equal(t, "B", SingleAnswer(1).String())
	assert.Equal(t, "A, C", MultipleAnswer(2, 0).String())
	assert.Equal(t, "—", NoAnswer().String())
}
