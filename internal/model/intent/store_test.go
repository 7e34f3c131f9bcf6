package intent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreFindByTag(t *testing.T) {
	store := MustMemoryStore(Seed())

	found := store.FindByTag("greeting")
	require.Len(t, found, 1)
	assert.NotEmpty(t, found[0].Responses)

	assert.Empty(t, store.FindByTag("unknown"))
	assert.Empty(t, store.FindByTag("Greeting"))
}

func TestMemoryStoreRejectsDuplicateTags(t *testing.T) {
	_, err := NewMemoryStore([]Intent{
		{Tag: "greeting", Responses: []string{"Hi!"}},
		{Tag: "greeting", Responses: []string{"Hello!"}},
	})
	require.Error(t, err)
}

func TestMemoryStoreListIsCopy(t *testing.T) {
	store := MustMemoryStore(Seed())
	items := store.List()
	items[0].Tag = "mutated"

	assert.Equal(t, "greeting", store.List()[0].Tag)
	assert.Equal(t, "greeting", store.Tags()[0])
}

func TestLoadJSONAndYAML(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "intents.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"intents":[{"tag":"greeting","patterns":["hi"],"responses":["Hi!","Hello!"]}]}`), 0o600))

	yamlPath := filepath.Join(dir, "intents.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("intents:\n  - tag: greeting\n    patterns: [hi]\n    responses: [\"Hi!\", \"Hello!\"]\n"), 0o600))

	for _, path := range []string{jsonPath, yamlPath} {
		store, err := Load(path)
		require.NoError(t, err, path)
		assert.Equal(t, []string{"greeting"}, store.Tags())
		assert.Equal(t, []string{"Hi!", "Hello!"}, store.FindByTag("greeting")[0].Responses)
	}
}

func TestLoadFailures(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	require.Error(t, err)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"intents":[]}`), 0o600))
	_, err = Load(empty)
	require.Error(t, err)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"intents":`), 0o600))
	_, err = Load(broken)
	require.Error(t, err)
}
