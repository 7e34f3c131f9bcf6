package classifier_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hallikerijaved/CareGpt/internal/service/classifier"
)

func TestFitOnTextsOrdersByFrequency(t *testing.T) {
	tok := classifier.FitOnTexts([]string{"hello world", "Hello, there!"}, "<OOV>")

	assert.Equal(t, 4, tok.VocabularySize())
	assert.Equal(t, []int{2, 3, 4}, tok.TextToSequence("hello world there"))
	assert.Equal(t, []int{2, 1, 4}, tok.TextToSequence("hello stranger there"))
}

func TestTextToSequenceWithoutOOVDropsUnknownWords(t *testing.T) {
	tok := classifier.NewTokenizer(map[string]int{"feel": 1, "sad": 2}, 0, "")

	assert.Equal(t, []int{1, 2}, tok.TextToSequence("i feel so sad"))
	assert.Empty(t, tok.TextToSequence("nothing known here"))
}

func TestTextToSequenceHonoursNumWords(t *testing.T) {
	index := map[string]int{"<OOV>": 1, "a": 2, "b": 3, "c": 4}

	limited := classifier.NewTokenizer(index, 3, "<OOV>")
	assert.Equal(t, []int{2, 1, 1}, limited.TextToSequence("a b c"))

	dropped := classifier.NewTokenizer(index, 3, "")
	assert.Equal(t, []int{2}, dropped.TextToSequence("a b c"))
}

func TestTextToSequenceAppliesFilters(t *testing.T) {
	tok := classifier.NewTokenizer(map[string]int{"hello": 1, "world": 2}, 0, "")

	assert.Equal(t, []int{1, 2}, tok.TextToSequence("HELLO,world!"))
}

func TestPadSequence(t *testing.T) {
	cases := []struct {
		name   string
		seq    []int
		maxLen int
		want   []int
	}{
		{name: "post padding", seq: []int{1, 2, 3}, maxLen: 5, want: []int{1, 2, 3, 0, 0}},
		{name: "exact", seq: []int{1, 2}, maxLen: 2, want: []int{1, 2}},
		{name: "keeps tail", seq: []int{1, 2, 3, 4}, maxLen: 2, want: []int{3, 4}},
		{name: "empty", seq: nil, maxLen: 3, want: []int{0, 0, 0}},
		{name: "no limit", seq: []int{7}, maxLen: 0, want: []int{7}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifier.PadSequence(tc.seq, tc.maxLen))
		})
	}
}

func TestLoadTokenizerKerasDocument(t *testing.T) {
	doc := `{
		"class_name": "Tokenizer",
		"config": {
			"num_words": null,
			"filters": "!\"#$%&()*+,-./:;<=>?@[\\]^_` + "`" + `{|}~\t\n",
			"lower": true,
			"split": " ",
			"char_level": false,
			"oov_token": "<OOV>",
			"word_index": "{\"<OOV>\": 1, \"i\": 2, \"feel\": 3, \"sad\": 4}"
		}
	}`
	path := filepath.Join(t.TempDir(), "tokenizer.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	tok, err := classifier.LoadTokenizer(path)
	require.NoError(t, err)

	assert.Equal(t, 4, tok.VocabularySize())
	assert.Equal(t, []int{2, 3, 1, 4}, tok.TextToSequence("I feel very sad"))
}

func TestLoadTokenizerObjectWordIndex(t *testing.T) {
	doc := `{"config": {"word_index": {"hi": 1}}}`
	path := filepath.Join(t.TempDir(), "tokenizer.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	tok, err := classifier.LoadTokenizer(path)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, tok.TextToSequence("hi there"))
}

func TestLoadTokenizerErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := classifier.LoadTokenizer(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	charLevel := filepath.Join(dir, "char.json")
	require.NoError(t, os.WriteFile(charLevel, []byte(`{"config": {"char_level": true, "word_index": {"a": 1}}}`), 0o600))
	_, err = classifier.LoadTokenizer(charLevel)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"config": {"word_index": "{}"}}`), 0o600))
	_, err = classifier.LoadTokenizer(empty)
	assert.Error(t, err)
}

func TestHasVocabularyIgnoresOOVAndPadding(t *testing.T) {
	tok := classifier.FitOnTexts([]string{"hello there"}, "<OOV>")

	assert.False(t, tok.HasVocabulary(tok.TextToSequence("xyzzy plugh")))
	assert.False(t, tok.HasVocabulary(classifier.PadSequence(tok.TextToSequence("xyzzy"), 4)))
	assert.True(t, tok.HasVocabulary(tok.TextToSequence("xyzzy hello")))
	assert.False(t, tok.HasVocabulary(nil))
}
