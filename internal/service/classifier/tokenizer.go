package classifier

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/samber/oops"
)

// DefaultFilters are the characters stripped before splitting, matching the
// Keras text tokenizer.
const DefaultFilters = "!\"#$%&()*+,-./:;<=>?@[\\]^_`{|}~\t\n"

// Tokenizer maps words to vocabulary indexes the same way the Keras text
// tokenizer the model was trained with does. Index 0 is reserved for padding.
type Tokenizer struct {
	wordIndex map[string]int
	numWords  int
	oovToken  string
	filters   string
	lower     bool
	split     string
}

// NewTokenizer builds a tokenizer over an existing vocabulary. numWords <= 0
// means unlimited; an empty oovToken drops unknown words.
func NewTokenizer(wordIndex map[string]int, numWords int, oovToken string) *Tokenizer {
	copied := make(map[string]int, len(wordIndex))
	for word, idx := range wordIndex {
		copied[word] = idx
	}
	return &Tokenizer{
		wordIndex: copied,
		numWords:  numWords,
		oovToken:  oovToken,
		filters:   DefaultFilters,
		lower:     true,
		split:     " ",
	}
}

// FitOnTexts builds a vocabulary from the given texts, most frequent word
// first with ties kept in order of first appearance.
func FitOnTexts(texts []string, oovToken string) *Tokenizer {
	t := NewTokenizer(nil, 0, oovToken)

	counts := make(map[string]int)
	var order []string
	for _, text := range texts {
		for _, word := range t.words(text) {
			if _, seen := counts[word]; !seen {
				order = append(order, word)
			}
			counts[word]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if oovToken != "" {
		order = append([]string{oovToken}, order...)
	}

	for i, word := range order {
		t.wordIndex[word] = i + 1
	}
	return t
}

// VocabularySize is the number of indexed words, excluding padding.
func (t *Tokenizer) VocabularySize() int {
	return len(t.wordIndex)
}

// TextToSequence converts text to vocabulary indexes. Unknown words, and
// words past the num_words limit, become the OOV index when an OOV token is
// configured and are dropped otherwise.
func (t *Tokenizer) TextToSequence(text string) []int {
	oovIndex, hasOOV := 0, false
	if t.oovToken != "" {
		oovIndex, hasOOV = t.wordIndex[t.oovToken]
	}

	var seq []int
	for _, word := range t.words(text) {
		idx, known := t.wordIndex[word]
		switch {
		case known && (t.numWords <= 0 || idx < t.numWords):
			seq = append(seq, idx)
		case hasOOV:
			seq = append(seq, oovIndex)
		}
	}
	return seq
}

// HasVocabulary reports whether seq holds at least one index besides
// padding and the OOV index.
func (t *Tokenizer) HasVocabulary(seq []int) bool {
	oovIndex := -1
	if t.oovToken != "" {
		if idx, ok := t.wordIndex[t.oovToken]; ok {
			oovIndex = idx
		}
	}
	for _, idx := range seq {
		if idx != 0 && idx != oovIndex {
			return true
		}
	}
	return false
}

func (t *Tokenizer) words(text string) []string {
	if t.lower {
		text = strings.ToLower(text)
	}
	text = strings.Map(func(r rune) rune {
		if strings.ContainsRune(t.filters, r) {
			return []rune(t.split)[0]
		}
		return r
	}, text)

	var words []string
	for _, word := range strings.Split(text, t.split) {
		if word != "" {
			words = append(words, word)
		}
	}
	return words
}

// PadSequence post-pads seq with zeros to maxLen. Longer sequences keep their
// last maxLen entries.
func PadSequence(seq []int, maxLen int) []int {
	if maxLen <= 0 {
		return append([]int(nil), seq...)
	}
	padded := make([]int, maxLen)
	if len(seq) > maxLen {
		seq = seq[len(seq)-maxLen:]
	}
	copy(padded, seq)
	return padded
}

// kerasTokenizerJSON is the document written by Tokenizer.to_json().
type kerasTokenizerJSON struct {
	ClassName string `json:"class_name"`
	Config    struct {
		NumWords  *int            `json:"num_words"`
		Filters   *string         `json:"filters"`
		Lower     *bool           `json:"lower"`
		Split     *string         `json:"split"`
		CharLevel bool            `json:"char_level"`
		OOVToken  *string         `json:"oov_token"`
		WordIndex json.RawMessage `json:"word_index"`
	} `json:"config"`
}

// LoadTokenizer reads a tokenizer exported with Keras' to_json().
func LoadTokenizer(path string) (*Tokenizer, error) {
	errb := oops.In("classifier").With("path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errb.Wrapf(err, "read tokenizer")
	}

	var doc kerasTokenizerJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errb.Wrapf(err, "parse tokenizer")
	}
	if doc.Config.CharLevel {
		return nil, errb.Errorf("character level tokenizers are not supported")
	}

	wordIndex, err := decodeWordIndex(doc.Config.WordIndex)
	if err != nil {
		return nil, errb.Wrapf(err, "parse word_index")
	}
	if len(wordIndex) == 0 {
		return nil, errb.Errorf("tokenizer vocabulary is empty")
	}

	numWords := 0
	if doc.Config.NumWords != nil {
		numWords = *doc.Config.NumWords
	}
	oov := ""
	if doc.Config.OOVToken != nil {
		oov = *doc.Config.OOVToken
	}

	t := NewTokenizer(wordIndex, numWords, oov)
	if doc.Config.Filters != nil {
		t.filters = *doc.Config.Filters
	}
	if doc.Config.Lower != nil {
		t.lower = *doc.Config.Lower
	}
	if doc.Config.Split != nil && *doc.Config.Split != "" {
		t.split = *doc.Config.Split
	}
	return t, nil
}

// decodeWordIndex accepts word_index either as an object or, as Keras
// writes it, as a JSON string holding the object.
func decodeWordIndex(raw json.RawMessage) (map[string]int, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing word_index")
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		raw = json.RawMessage(encoded)
	}

	var wordIndex map[string]int
	if err := json.Unmarshal(raw, &wordIndex); err != nil {
		return nil, err
	}
	return wordIndex, nil
}
