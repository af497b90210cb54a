package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/mappool-community/internal/app"
	"github.com/oggyb/mappool-community/internal/config"
	svcErr "github.com/oggyb/mappool-community/internal/errors"
)

func newTestService(t *testing.T, webhookURL string) *Service {
	t.Helper()
	cfg := config.New()
	cfg.Discord.WebhookURL = webhookURL
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(app.New(nil, nil, logger, cfg))
}

func TestBuildEmbed_Bounty(t *testing.T) {
	e := BuildEmbed(Event{
		Title:           "xi - FREEDOM DiVE [FOUR DIMENSIONS]",
		URL:             "https://osu.ppy.sh/beatmapsets/39804#osu/129891",
		Type:            "bounty",
		SubmittedByName: "Some Player",
		Skill:           "streams",
		Mod:             "HR",
		Stars:           "7.46",
		CoverURL:        "https://assets.ppy.sh/card.jpg",
	})

	assert.Equal(t, "💰 New Bounty: xi - FREEDOM DiVE [FOUR DIMENSIONS]", e.Title)
	assert.Equal(t, colorBounty, e.Color)
	assert.Equal(t, "https://osu.ppy.sh/beatmapsets/39804#osu/129891", e.URL)
	require.Len(t, e.Fields, 5)
	assert.Equal(t, "Some Player", e.Fields[0].Value)
	assert.Equal(t, "streams", e.Fields[1].Value)
	assert.Equal(t, "HR", e.Fields[2].Value)
	assert.Equal(t, "7.46", e.Fields[3].Value)
	assert.Equal(t, "https://osu.ppy.sh/beatmapsets/39804#osu/129891", e.Fields[4].Value)
	require.NotNil(t, e.Thumbnail)
	assert.Equal(t, "https://assets.ppy.sh/card.jpg", e.Thumbnail.URL)
}

func TestBuildEmbed_SuggestionDefaultsAndFallbacks(t *testing.T) {
	e := BuildEmbed(Event{Type: "suggestion"})

	assert.Equal(t, "💰 New Suggestion: Untitled", e.Title)
	assert.Equal(t, colorSuggestion, e.Color)
	assert.Equal(t, "Unknown", e.Fields[0].Value)
	assert.Equal(t, "N/A", e.Fields[1].Value)
	assert.Equal(t, "NM", e.Fields[2].Value)
	assert.Equal(t, "N/A", e.Fields[3].Value)
	assert.Equal(t, "N/A", e.Fields[4].Value)
	assert.Nil(t, e.Thumbnail)
}

func TestBuildEmbed_UnknownTypeTreatedAsSuggestion(t *testing.T) {
	e := BuildEmbed(Event{Title: "T"})
	assert.Equal(t, colorSuggestion, e.Color)
	assert.True(t, strings.HasPrefix(e.Title, "💰 New Suggestion:"))
}

func TestBuildEmbed_ClampsLongFields(t *testing.T) {
	e := BuildEmbed(Event{
		Title: strings.Repeat("a", 300),
		Skill: strings.Repeat("b", 2000),
	})

	titleRunes := []rune(e.Title)
	assert.Len(t, titleRunes, maxTitleLen)
	assert.Equal(t, '…', titleRunes[len(titleRunes)-1])

	skillRunes := []rune(e.Fields[1].Value)
	assert.Len(t, skillRunes, maxFieldLen)
	assert.Equal(t, '…', skillRunes[len(skillRunes)-1])
}

func TestNotify_PostsEmbed(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	svc := newTestService(t, srv.URL)
	require.True(t, svc.Configured())

	err := svc.Notify(context.Background(), Event{Title: "T", Type: "bounty", Stars: "5.00"})
	require.NoError(t, err)

	require.Len(t, got.Embeds, 1)
	assert.Equal(t, colorBounty, got.Embeds[0].Color)
	assert.Equal(t, "5.00", got.Embeds[0].Fields[3].Value)
}

func TestNotify_WebhookRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	svc := newTestService(t, srv.URL)
	err := svc.Notify(context.Background(), Event{Title: "T"})

	var appErr *svcErr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
}

func TestConfigured(t *testing.T) {
	assert.False(t, newTestService(t, "").Configured())
	assert.True(t, newTestService(t, "https://discord.com/api/webhooks/x/y").Configured())
}
