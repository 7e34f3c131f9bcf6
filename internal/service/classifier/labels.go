package classifier

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/samber/oops"
)

// LabelEncoder decodes class indexes back to intent tags.
type LabelEncoder struct {
	classes []string
}

// NewLabelEncoder sorts and de-duplicates tags, as a fitted scikit-learn
// LabelEncoder does.
func NewLabelEncoder(tags []string) *LabelEncoder {
	classes := slices.Clone(tags)
	slices.Sort(classes)
	return &LabelEncoder{classes: slices.Compact(classes)}
}

// LoadLabelEncoder reads the encoder classes from a JSON array, or from an
// object with a "classes" array. The stored order is kept as is.
func LoadLabelEncoder(path string) (*LabelEncoder, error) {
	errb := oops.In("classifier").With("path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errb.Wrapf(err, "read label encoder")
	}

	var classes []string
	if err := json.Unmarshal(data, &classes); err != nil {
		var doc struct {
			Classes []string `json:"classes"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errb.Wrapf(err, "parse label encoder")
		}
		classes = doc.Classes
	}
	if len(classes) == 0 {
		return nil, errb.Errorf("label encoder has no classes")
	}
	return &LabelEncoder{classes: classes}, nil
}

// Len is the number of classes.
func (e *LabelEncoder) Len() int {
	return len(e.classes)
}

// Classes returns the tags in index order.
func (e *LabelEncoder) Classes() []string {
	return slices.Clone(e.classes)
}

// Decode maps a class index to its tag.
func (e *LabelEncoder) Decode(index int) (string, error) {
	if index < 0 || index >= len(e.classes) {
		return "", fmt.Errorf("%w: %d not in [0,%d)", ErrUnknownClass, index, len(e.classes))
	}
	return e.classes[index], nil
}

// Index returns the class index of tag, or -1.
func (e *LabelEncoder) Index(tag string) int {
	return slices.Index(e.classes, tag)
}
