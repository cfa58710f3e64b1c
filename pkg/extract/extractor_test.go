package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postcrawler/pkg/config"
)

const listingHTML = `<html><body>
<ol class="block-body">
  <li class="block-row">
    <div class="contentRow-main">
      <h3 class="contentRow-title"><a href="/threads/tank-build.123/post-456">  Tank build &amp; plans </a></h3>
      <div class="contentRow-snippet">First week of cycling.</div>
      <div class="contentRow-minor">
        <ul>
          <li><span class="username" dir="auto">Silent</span></li>
          <li>Post #42</li>
          <li><time datetime="2024-03-05T14:20:00-0500">Mar 5, 2024</time></li>
          <li>Forum: <a href="/forums/general/">General</a> <a href="/forums/reef/">Reef Aquarium Discussion</a></li>
        </ul>
      </div>
    </div>
  </li>
  <li class="block-row">
    <div class="contentRow-main">
      <h3 class="contentRow-title"><a href="https://other.example.com/abs">Absolute</a></h3>
      <div class="contentRow-snippet"></div>
    </div>
  </li>
  <li class="block-row">
    <h3 class="contentRow-title">No link</h3>
  </li>
</ol>
</body></html>`

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New(config.DefaultConfig().Selectors, "https://www.reef2reef.com")
	require.NoError(t, err)
	return e
}

func TestFromHTML(t *testing.T) {
	e := newTestExtractor(t)

	records, err := e.FromHTML(listingHTML)
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	require.NotNil(t, first.Title)
	assert.Equal(t, "Tank build & plans", *first.Title)
	assert.Equal(t, "First week of cycling.", *first.Content)
	assert.Equal(t, "https://www.reef2reef.com/threads/tank-build.123/post-456", *first.URL)
	assert.Equal(t, "Silent", *first.Author)
	assert.Equal(t, "Post #42", *first.PostNumber)
	assert.Equal(t, "2024-03-05T14:20:00-0500", *first.Date)
	assert.Equal(t, "Reef Aquarium Discussion", *first.Forum)

	ts, err := first.Timestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(1709666400), ts.Unix())
}

func TestMissingFieldsAreNil(t *testing.T) {
	e := newTestExtractor(t)

	records, err := e.FromHTML(listingHTML)
	require.NoError(t, err)

	second := records[1]
	assert.Equal(t, "https://other.example.com/abs", *second.URL)
	require.NotNil(t, second.Content, "present but empty element keeps an empty string")
	assert.Equal(t, "", *second.Content)
	assert.Nil(t, second.Author)
	assert.Nil(t, second.Date)
	assert.Nil(t, second.Forum)

	third := records[2]
	assert.Equal(t, "No link", *third.Title)
	assert.Nil(t, third.URL)
}

func TestEmptyListing(t *testing.T) {
	e := newTestExtractor(t)

	records, err := e.FromHTML(`<div class="blockMessage">No results found.</div>`)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestNewRequiresRowSelector(t *testing.T) {
	_, err := New(config.SelectorConfig{}, "https://www.reef2reef.com")
	assert.Error(t, err)
}
