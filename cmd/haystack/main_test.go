package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const testDocuments = `
{"type": "article", "id": "1", "title": "Needle", "boost": 1}
{"type": "article", "id": "2", "title": "Haystack", "body": "a needle", "boost": 3}
{"type": "product", "id": "red", "title": "Shirt", "facets": [{"color": "red"}]}
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"haystack"}, args...))
	return out.String(), err
}

func seedDatabase(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	db := filepath.Join(dir, "db")
	input := filepath.Join(dir, "docs.json")
	require.NoError(t, os.WriteFile(input, []byte(testDocuments), 0o600))

	out, err := run(t, "--db", db, "index", input)
	require.NoError(t, err)
	assert.Contains(t, out, "indexed 3 documents")
	return db
}

func TestSetupLogger(t *testing.T) {
	_, err := run(t, "--log-level", "loud", "stats")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")

	_, err = run(t, "--log-format", "xml", "stats")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log format")
}

func TestSearchCommand(t *testing.T) {
	db := seedDatabase(t)

	out, err := run(t, "--db", db, "search", "needles")
	require.NoError(t, err)
	assert.Contains(t, out, "page 1 of 1, 2 hits")
	first := strings.Index(out, "article/2\tHaystack")
	second := strings.Index(out, "article/1\tNeedle")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)

	out, err = run(t, "--db", db, "search", "--all", "needle haystack")
	require.NoError(t, err)
	assert.Contains(t, out, "1 hits")
	assert.NotContains(t, out, "article/1")

	out, err = run(t, "--db", db, "search", "--facet", "color=red", "shirt")
	require.NoError(t, err)
	assert.Contains(t, out, "product/red\tShirt")

	out, err = run(t, "--db", db, "search", "--type", "product", "needle")
	require.NoError(t, err)
	assert.Contains(t, out, "0 hits")
}

func TestSearchCommand_Metrics(t *testing.T) {
	db := seedDatabase(t)

	out, err := run(t, "--db", db, "search", "--metrics", "needle", "anvil")
	require.NoError(t, err)
	assert.Contains(t, out, `haystack_search_queries_total{operator=any} 1`)
	assert.Contains(t, out, "haystack_search_unresolved_terms_total 1")
	assert.Contains(t, out, "haystack_search_rank_duration_seconds_count 1")
}

func TestSearchCommand_InvalidFacet(t *testing.T) {
	db := seedDatabase(t)

	_, err := run(t, "--db", db, "search", "--facet", "color", "shirt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key=value")
}

func TestRemoveCommand(t *testing.T) {
	db := seedDatabase(t)

	_, err := run(t, "--db", db, "remove", "1")
	require.Error(t, err, "type is required")

	out, err := run(t, "--db", db, "remove", "--type", "article", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "removed 1 documents")

	out, err = run(t, "--db", db, "search", "needle")
	require.NoError(t, err)
	assert.Contains(t, out, "1 hits")
	assert.NotContains(t, out, "article/2")
}

func TestStatsAndReindexCommands(t *testing.T) {
	db := seedDatabase(t)

	out, err := run(t, "--db", db, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "documents: 3")
	assert.Contains(t, out, "postings: 3")

	out, err = run(t, "--db", db, "reindex", "--batch-size", "2", "--pool-size", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "indexed 3 documents")

	out, err = run(t, "--db", db, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "postings: 3")
}

func TestIndexCommand_MalformedInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(input, []byte(`{"type": "article", "id": `), 0o600))

	_, err := run(t, "--db", filepath.Join(dir, "db"), "index", input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding document 1")
}

func TestSearchCommandFlags(t *testing.T) {
	cmd := newApp().Command("search")
	require.NotNil(t, cmd)

	var page *cli.IntFlag
	for _, flag := range cmd.Flags {
		if f, ok := flag.(*cli.IntFlag); ok && f.Name == "page" {
			page = f
		}
	}
	require.NotNil(t, page)
	assert.Equal(t, 1, page.Value)
}
