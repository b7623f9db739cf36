package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghostal/pkg/domain"
)

const listingHTML = `<html><body>
<a href="/sg/">Home</a>
<a href="?ep=1">Elevator</a>
<a href="?ep=2">Gilligan</a>
<a href="?ep=1">Elevator again</a>
<a href="mailto:sg@example.com">mail</a>
</body></html>`

const episodeHTML = `<html><head><title> Elevator </title></head><body>
<table>
<tr><th>Guest Stars:</th><td> Bob Denver, Susan Powter </td></tr>
<tr><th>Synopsis:</th><td>Space Ghost gets stuck in an elevator.</td></tr>
</table>
<p>:START FEED</p>
<p>Space Ghost: (laughs) You fools! (explosion sound)</p>
<p>: And another thing.</p>
<p>Zorak: Whatever.</p>
<p>This paragraph has no speaker</p>
</body></html>`

func TestExtractEpisodeLinks(t *testing.T) {
	links, err := ExtractEpisodeLinks(listingHTML, "?ep")
	require.NoError(t, err)
	assert.Equal(t, []string{"?ep=1", "?ep=2"}, links)
}

func TestExtractEpisodeLinks_NoneFound(t *testing.T) {
	_, err := ExtractEpisodeLinks(`<a href="/x">x</a>`, "?ep")
	assert.ErrorIs(t, err, ErrNoEpisodeLinks)

	_, err = ExtractEpisodeLinks("  ", "?ep")
	assert.ErrorIs(t, err, ErrEmptyHTML)
}

func TestExtractEpisode(t *testing.T) {
	ep, err := ExtractEpisode(episodeHTML, "?ep=1")
	require.NoError(t, err)

	assert.Equal(t, "Elevator", domain.Deref(ep.Title))
	assert.Equal(t, "?ep=1", ep.URL)
	assert.Equal(t, "Bob Denver, Susan Powter", domain.Deref(ep.GuestStars))
	assert.Equal(t, "Space Ghost gets stuck in an elevator.", domain.Deref(ep.Synopsis))

	require.Len(t, ep.Transcript, 3)
	assert.Equal(t, "Space Ghost", domain.Deref(ep.Transcript[0].Speaker))
	assert.Equal(t, "(laughs) You fools! (explosion sound)", domain.Deref(ep.Transcript[0].Dialogue))
	assert.Nil(t, ep.Transcript[1].Speaker)
	assert.Equal(t, "And another thing.", domain.Deref(ep.Transcript[1].Dialogue))
	assert.Equal(t, "Zorak", domain.Deref(ep.Transcript[2].Speaker))
}

func TestExtractEpisode_MissingFieldsAreNil(t *testing.T) {
	ep, err := ExtractEpisode(`<html><body><p>Moltar: Hi.</p></body></html>`, "?ep=9")
	require.NoError(t, err)

	assert.Nil(t, ep.GuestStars)
	assert.Nil(t, ep.Synopsis)
	require.Len(t, ep.Transcript, 1)
	assert.Equal(t, "Moltar", domain.Deref(ep.Transcript[0].Speaker))
}

func TestExtractEpisode_LabelWithoutCell(t *testing.T) {
	ep, err := ExtractEpisode(`<html><head><title>T</title></head><body><table><tr><th>Synopsis:</th></tr></table></body></html>`, "?ep=3")
	require.NoError(t, err)
	assert.Nil(t, ep.Synopsis)
	assert.Empty(t, ep.Transcript)
}
