package scoring

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/aura-service/internal/entity"
)

func TestScoreLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url      string
		internal bool
		want     entity.Color
	}{
		{"https://example.com/about", true, entity.ColorBlue},
		{"https://other.org/", false, entity.ColorIndigo},
		{"https://www.facebook.com/page", false, entity.ColorIndigo},
		{"https://x.com/someone", false, entity.ColorIndigo},
		{"https://box.com/file", false, entity.ColorIndigo},
		{"https://example.com/files/report.PDF", true, entity.ColorOrange},
		{"https://example.com/src.tar.gz", true, entity.ColorOrange},
		{"https://www.youtube.com/watch?v=1", false, entity.ColorRed},
		{"https://youtu.be/abc", false, entity.ColorRed},
		{"https://vimeo.com/123", false, entity.ColorRed},
	}
	for _, tt := range tests {
		u, err := url.Parse(tt.url)
		require.NoError(t, err)

		aura := ScoreLink(u, tt.internal)
		assert.Equal(t, tt.want, aura.Circle.Color, tt.url)
		assert.NotEmpty(t, aura.Circle.Intent, tt.url)
		assert.Equal(t, entity.UniformStar(50, 50), aura.Star, tt.url)
	}
}

func TestScoreLinkExternalIntent(t *testing.T) {
	t.Parallel()

	u, err := url.Parse("https://box.com/file")
	require.NoError(t, err)
	assert.Equal(t, "Link to an external domain.", ScoreLink(u, false).Circle.Intent)
}
