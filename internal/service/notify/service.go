package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/oggyb/mappool-community/internal/app"
	svcErr "github.com/oggyb/mappool-community/internal/errors"
)

// Discord embed limits; free-text fields are capped before transmission.
const (
	maxTitleLen = 256
	maxFieldLen = 1024
)

// Embed colors keyed by submission type.
const (
	colorBounty     = 0xf1c40f
	colorSuggestion = 0x8e44ad
)

// Service formats submission events into webhook embeds and posts them.
// Fire-and-forget: a failed post is surfaced to the caller but never
// retried.
type Service struct {
	appCtx     *app.AppContext
	webhookURL string
	httpClient *http.Client
}

// NewService creates the dispatcher with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:     appCtx,
		webhookURL: appCtx.Config.Discord.WebhookURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether a webhook URL is present.
func (s *Service) Configured() bool {
	return s.webhookURL != ""
}

// Event is the loosely-typed submission payload to announce.
type Event struct {
	Title           string `json:"title"`
	URL             string `json:"url"`
	Type            string `json:"type"`
	SubmittedByName string `json:"submitted_by_name"`
	Skill           string `json:"skill"`
	Mod             string `json:"mod"`
	Stars           string `json:"stars"`
	CoverURL        string `json:"cover_url"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedThumbnail struct {
	URL string `json:"url"`
}

type embed struct {
	Title     string          `json:"title"`
	URL       string          `json:"url,omitempty"`
	Color     int             `json:"color"`
	Fields    []embedField    `json:"fields"`
	Thumbnail *embedThumbnail `json:"thumbnail,omitempty"`
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

// BuildEmbed formats an event into the webhook embed, sanitizing and
// length-capping every free-text field.
func BuildEmbed(ev Event) embed {
	kind := "Suggestion"
	color := colorSuggestion
	if ev.Type == "bounty" {
		kind = "Bounty"
		color = colorBounty
	}

	e := embed{
		Title: clamp(fmt.Sprintf("💰 New %s: %s", kind, sanitize(ev.Title, "Untitled")), maxTitleLen),
		URL:   ev.URL,
		Color: color,
		Fields: []embedField{
			{Name: "👤 Submitted by", Value: clamp(sanitize(ev.SubmittedByName, "Unknown"), maxFieldLen), Inline: true},
			{Name: "🎯 Challenge", Value: clamp(sanitize(ev.Skill, "N/A"), maxFieldLen), Inline: true},
			{Name: "🧩 Mods", Value: clamp(sanitize(ev.Mod, "NM"), maxFieldLen), Inline: true},
			{Name: "⭐ Stars", Value: clamp(sanitize(ev.Stars, "N/A"), maxFieldLen), Inline: true},
			{Name: "🔗 Link", Value: clamp(sanitize(ev.URL, "N/A"), maxFieldLen), Inline: false},
		},
	}
	if ev.CoverURL != "" {
		e.Thumbnail = &embedThumbnail{URL: ev.CoverURL}
	}
	return e
}

// Notify posts the event to the configured webhook.
func (s *Service) Notify(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(webhookPayload{Embeds: []embed{BuildEmbed(ev)}})
	if err != nil {
		return svcErr.Internal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return svcErr.Internal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.appCtx.Logger.Error("webhook post failed", "err", err)
		return svcErr.Upstream("failed to send notification", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.appCtx.Logger.Error("webhook rejected notification", "status", resp.StatusCode)
		return svcErr.Upstream("failed to send notification",
			fmt.Errorf("webhook returned %d", resp.StatusCode))
	}
	return nil
}

func sanitize(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func clamp(v string, max int) string {
	runes := []rune(v)
	if len(runes) <= max {
		return v
	}
	return string(runes[:max-1]) + "…"
}
