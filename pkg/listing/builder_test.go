package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBase = "https://www.reef2reef.com/search/5928544/"

func TestBuild(t *testing.T) {
	b := NewBuilder(testBase, "Silent")

	assert.Equal(t,
		"https://www.reef2reef.com/search/5928544/?q=%2A&c[users]=Silent&o=date",
		b.Build(nil))

	cursor := "1700000000"
	assert.Equal(t,
		"https://www.reef2reef.com/search/5928544/?q=%2A&c[users]=Silent&o=date&c[older_than]=1700000000",
		b.Build(&cursor))
}

func TestBuildDeterministic(t *testing.T) {
	b := NewBuilder(testBase, "Reef Keeper")
	c1 := "1690000000"
	c2 := "1690000000"
	assert.Equal(t, b.Build(&c1), b.Build(&c2))
	assert.Contains(t, b.Build(nil), "c[users]=Reef+Keeper")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		filter  string
		wantErr bool
	}{
		{"valid", testBase, "Silent", false},
		{"missing filter", testBase, " ", true},
		{"bad scheme", "ftp://example.com/search/", "Silent", true},
		{"query string", testBase + "?q=x", "Silent", true},
		{"empty base", "", "Silent", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewBuilder(tt.base, tt.filter).Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCursorRoundTrip(t *testing.T) {
	ts := time.Date(2023, 11, 14, 22, 13, 20, 999_000_000, time.UTC)
	cursor := CursorFrom(ts)
	assert.Equal(t, "1700000000", cursor)

	v, err := ParseCursor(cursor)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), v)

	_, err = ParseCursor("abc")
	assert.Error(t, err)
}
