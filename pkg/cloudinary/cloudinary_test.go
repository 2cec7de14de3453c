package cloudinary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicIDFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://res.cloudinary.com/demo/image/upload/q_auto,f_auto,w_800,c_fill/v1712/leisuretimez/profiles/abc.jpg", "leisuretimez/profiles/abc"},
		{"https://res.cloudinary.com/demo/image/upload/v1/blog/cover.png", "blog/cover"},
		{"https://res.cloudinary.com/demo/image/upload/sample.jpg", "sample"},
	}
	for _, tt := range tests {
		got, err := PublicIDFromURL(tt.url)
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.want, got)
	}
}

func TestPublicIDFromURLRejectsForeignURLs(t *testing.T) {
	for _, u := range []string{
		"https://example.com/image/upload/x.jpg",
		"https://res.cloudinary.com/demo/image/fetch/x.jpg",
		"https://res.cloudinary.com/demo/image/upload/",
		"/media/profile_images/a.png",
	} {
		_, err := PublicIDFromURL(u)
		assert.ErrorIs(t, err, ErrNotCloudinaryURL, u)
	}
}

func TestBuildOptimizedImageURL(t *testing.T) {
	assert.Equal(t,
		"https://res.cloudinary.com/demo/image/upload/q_auto,f_auto,w_800,c_fill/blog/a",
		BuildOptimizedImageURL("demo", "blog/a", 0))
	assert.Contains(t, BuildOptimizedImageURL("demo", "x", 320), "w_320")
}
