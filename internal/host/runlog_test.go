package host

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcbops/gotest-zigzag/internal/testitem"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "a b", truncate("a\nb\r", 10))
	assert.Equal(t, "abc...", truncate("abcdef", 3))

	cut := truncate("ünïcödé output", 4)
	assert.Equal(t, "ünïc...", cut)
	assert.True(t, utf8.ValidString(cut))

	long := strings.Repeat("→", 600)
	assert.True(t, utf8.ValidString(truncate(long, 500)))
	assert.Equal(t, 503, utf8.RuneCountInString(truncate(long, 500)))
}

func TestRunLogResult(t *testing.T) {
	dir := t.TempDir()
	log, err := NewRunLog(dir)
	require.NoError(t, err)

	item := &testitem.Item{Name: "TestPay", Package: shop}
	item.Properties.Append("test_step", "false")
	log.LogResult(item, Result{Outcome: Failed, Message: "test failed", Output: strings.Repeat("é", 700)})
	require.NoError(t, log.Close())

	data, err := os.ReadFile(filepath.Join(dir, "zigzag.log"))
	require.NoError(t, err)
	text := string(data)
	assert.True(t, utf8.ValidString(text))
	assert.Contains(t, text, "example.com/shop.TestPay failed")
	assert.Contains(t, text, "property: test_step=false")
	assert.Contains(t, text, "...")
}

func TestNilRunLogIsSilent(t *testing.T) {
	var log *RunLog
	log.Log("ignored %d", 1)
	log.LogResult(&testitem.Item{Name: "TestPay"}, Result{Outcome: Passed})
	assert.NoError(t, log.Close())
}
