package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieParams(t *testing.T) {
	params, err := cookieParams("xf_user=123%2Cabc; xf_session=def", "https://www.reef2reef.com")
	require.NoError(t, err)
	require.Len(t, params, 2)

	assert.Equal(t, "xf_user", params[0].Name)
	assert.Equal(t, "123%2Cabc", params[0].Value)
	assert.Equal(t, "https://www.reef2reef.com", params[0].URL)
	assert.Equal(t, "/", params[0].Path)
	assert.Equal(t, "xf_session", params[1].Name)
}

func TestCookieParamsInvalid(t *testing.T) {
	_, err := cookieParams("no equals sign here", "https://www.reef2reef.com")
	assert.Error(t, err)
}
