package man

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcbops/gotest-zigzag/internal/options"
)

func TestEveryPageHasContent(t *testing.T) {
	for _, page := range ListPages() {
		content, err := page.GetContent()
		require.NoError(t, err, page.Name)
		assert.Contains(t, content, "# "+page.Title, page.Name)
	}
	assert.Len(t, ListPages(), len(Pages))
}

func TestGetPageByAlias(t *testing.T) {
	assert.Equal(t, "options", GetPage("settings").Name)
	assert.Equal(t, "marks", GetPage("STEPS").Name)
	assert.Nil(t, GetPage("nope"))
}

func TestRenderPagePlainStyle(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf).WithStyle(NoTTYStyle)

	require.NoError(t, r.RenderPage(GetPage("upload")))
	assert.Contains(t, buf.String(), "QTEST_API_TOKEN")
}

func TestRenderListAndNotFound(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	r.RenderList()
	for _, page := range ListPages() {
		assert.Contains(t, buf.String(), page.Name)
	}

	buf.Reset()
	r.RenderNotFound("nope")
	assert.Contains(t, buf.String(), "Topic not found: nope")
}

func TestOptionsPageListsRegisteredOptions(t *testing.T) {
	content, err := GetPage("options").GetContent()
	require.NoError(t, err)

	assert.NotContains(t, content, optionsMarker)
	for _, opt := range options.Registry {
		assert.Contains(t, content, "| `"+opt.Name+"` |", opt.Name)
	}
	assert.Contains(t, content, "| `zigzag` | bool | false |")
}

func TestRenderListNoTTY(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf).WithStyle(NoTTYStyle).RenderList()

	assert.NotContains(t, buf.String(), "\033[")
	assert.Contains(t, buf.String(), "  marks (mark, steps, properties)\n")
}

func TestRenderNotFoundSuggests(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf).WithStyle(NoTTYStyle).RenderNotFound("uploads")

	assert.Contains(t, buf.String(), "Topic not found: uploads\n")
	assert.Contains(t, buf.String(), "Did you mean: upload?")
}
