package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/oggyb/mappool-community/internal/app"
	svcErr "github.com/oggyb/mappool-community/internal/errors"
)

// maxExternalID is the sanity bound for catalog beatmap IDs.
const maxExternalID = 1<<31 - 1

// Service proxies the external beatmap catalog: it holds the cached bearer
// credential and normalizes upstream responses into the shape the frontend
// stores on submissions.
type Service struct {
	appCtx     *app.AppContext
	tokens     *TokenSource
	apiBaseURL string
	httpClient *http.Client
}

// NewService creates the catalog proxy with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	client := &http.Client{Timeout: 10 * time.Second}
	cfg := appCtx.Config
	return &Service{
		appCtx:     appCtx,
		tokens:     NewTokenSource(cfg.Osu.ClientID, cfg.Osu.ClientSecret, cfg.Osu.TokenURL, client),
		apiBaseURL: cfg.Osu.APIBaseURL,
		httpClient: client,
	}
}

// Configured reports whether catalog credentials are present.
func (s *Service) Configured() bool {
	return s.appCtx.Config.Osu.ClientID != "" && s.appCtx.Config.Osu.ClientSecret != ""
}

// upstreamBeatmap is the slice of the catalog response we care about.
type upstreamBeatmap struct {
	ID               int64   `json:"id"`
	Version          string  `json:"version"`
	DifficultyRating float64 `json:"difficulty_rating"`
	CS               float64 `json:"cs"`
	AR               float64 `json:"ar"`
	Accuracy         float64 `json:"accuracy"`
	BPM              float64 `json:"bpm"`
	TotalLength      int64   `json:"total_length"`
	Beatmapset       struct {
		ID         int64  `json:"id"`
		Artist     string `json:"artist"`
		Title      string `json:"title"`
		PreviewURL string `json:"preview_url"`
		Covers     struct {
			Card string `json:"card"`
		} `json:"covers"`
	} `json:"beatmapset"`
}

// BeatmapInfo is the normalized metadata served to clients.
type BeatmapInfo struct {
	Title      string  `json:"title"`
	Stars      string  `json:"stars"`
	CS         float64 `json:"cs"`
	AR         float64 `json:"ar"`
	OD         float64 `json:"od"`
	BPM        float64 `json:"bpm"`
	Length     string  `json:"length"`
	URL        string  `json:"url"`
	PreviewURL string  `json:"preview_url"`
	CoverURL   string  `json:"cover_url"`
}

// FetchBeatmap retrieves and normalizes metadata for one catalog beatmap.
// Upstream failure details go to logs, never to the caller.
func (s *Service) FetchBeatmap(ctx context.Context, externalID int64) (*BeatmapInfo, error) {
	if externalID <= 0 || externalID > maxExternalID {
		return nil, svcErr.Validation("invalid beatmap id")
	}

	token, err := s.tokens.Token(ctx)
	if err != nil {
		s.appCtx.Logger.Error("catalog token refresh failed", "err", err)
		return nil, err
	}

	url := fmt.Sprintf("%s/beatmaps/%d", s.apiBaseURL, externalID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, svcErr.Internal(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.appCtx.Logger.Error("catalog fetch failed", "beatmap_id", externalID, "err", err)
		return nil, svcErr.Upstream("failed to fetch beatmap info", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, svcErr.NotFound("beatmap not found")
	case resp.StatusCode != http.StatusOK:
		s.appCtx.Logger.Error("catalog returned error", "beatmap_id", externalID, "status", resp.StatusCode)
		return nil, svcErr.Upstream("failed to fetch beatmap info",
			fmt.Errorf("catalog returned %d", resp.StatusCode))
	}

	var bm upstreamBeatmap
	if err := json.NewDecoder(resp.Body).Decode(&bm); err != nil {
		return nil, svcErr.Upstream("failed to fetch beatmap info", err)
	}

	return normalize(&bm), nil
}

func normalize(bm *upstreamBeatmap) *BeatmapInfo {
	return &BeatmapInfo{
		Title:      fmt.Sprintf("%s - %s [%s]", bm.Beatmapset.Artist, bm.Beatmapset.Title, bm.Version),
		Stars:      fmt.Sprintf("%.2f", bm.DifficultyRating),
		CS:         bm.CS,
		AR:         bm.AR,
		OD:         bm.Accuracy,
		BPM:        bm.BPM,
		Length:     formatSeconds(bm.TotalLength),
		URL:        fmt.Sprintf("https://osu.ppy.sh/beatmapsets/%d#osu/%d", bm.Beatmapset.ID, bm.ID),
		PreviewURL: bm.Beatmapset.PreviewURL,
		CoverURL:   bm.Beatmapset.Covers.Card,
	}
}

// formatSeconds renders a duration as minutes:seconds with zero-padded
// seconds, e.g. 125 -> "2:05".
func formatSeconds(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
