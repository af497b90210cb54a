package community

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/oggyb/mappool-community/internal/app"
	"github.com/oggyb/mappool-community/internal/db"
	svcErr "github.com/oggyb/mappool-community/internal/errors"
	"github.com/oggyb/mappool-community/internal/repository"
)

// Fallback display names used when the self-healing resolver has to
// fabricate a user row without a usable hint. Kept distinct per write path
// so a healed row hints at where it came from.
const (
	fallbackSubmitter = "Unknown User"
	fallbackVoter     = "Voter"
	fallbackCommenter = "Commenter"
	fallbackAuthor    = "Unknown"
)

// Service implements the community API: users, beatmap submissions, votes
// and comments. Business logic lives here, on top of the repository and
// cache layers; HTTP binding is in handlers.go.
type Service struct {
	appCtx      *app.AppContext
	userRepo    *repository.UserRepository
	beatmapRepo *repository.BeatmapRepository
	voteRepo    *repository.VoteRepository
	commentRepo *repository.CommentRepository
}

// NewService creates the community service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		userRepo:    repository.NewUserRepository(appCtx.DB),
		beatmapRepo: repository.NewBeatmapRepository(appCtx.DB),
		voteRepo:    repository.NewVoteRepository(appCtx.DB),
		commentRepo: repository.NewCommentRepository(appCtx.DB),
	}
}

// isAdminSecret compares a caller-supplied secret against the configured
// shared admin secret. Exact string compare; an unset secret disables the
// admin path entirely.
func (s *Service) isAdminSecret(secret string) bool {
	return s.appCtx.Config.Admin.Secret != "" && secret == s.appCtx.Config.Admin.Secret
}

//
// Users
//

// Register validates the display name, mints a fresh opaque ID and inserts
// the user.
func (s *Service) Register(ctx context.Context, displayName string) (*db.User, error) {
	if err := validateDisplayName(displayName); err != nil {
		return nil, err
	}

	user := &db.User{
		ID:          uuid.NewString(),
		DisplayName: displayName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, svcErr.Map(err)
	}

	s.appCtx.Logger.Info("registered user", "display_name", displayName, "id", user.ID)
	return user, nil
}

// GetUser returns a user by ID.
func (s *Service) GetUser(ctx context.Context, id string) (*db.User, error) {
	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return user, nil
}

// RenameUser changes a user's display name. Only the user themselves may
// rename; past comment snapshots are left untouched.
func (s *Service) RenameUser(ctx context.Context, id, requesterID, displayName string) error {
	if requesterID == "" {
		return svcErr.AuthRequired("user ID required")
	}
	if requesterID != id {
		return svcErr.Forbidden("not allowed (not owner)")
	}
	if err := validateDisplayName(displayName); err != nil {
		return err
	}
	if err := s.userRepo.Rename(ctx, id, displayName); err != nil {
		return svcErr.Map(err)
	}
	return nil
}

// SetAdmin flips the admin flag. The handler gates this behind the admin
// secret.
func (s *Service) SetAdmin(ctx context.Context, id string, admin bool) error {
	if err := s.userRepo.SetAdmin(ctx, id, admin); err != nil {
		return svcErr.Map(err)
	}
	return nil
}

//
// Submissions
//

// SubmitInput carries the submit payload after HTTP binding.
type SubmitInput struct {
	Title           string
	URL             string
	Stars           string
	CS              string
	AR              string
	OD              string
	BPM             string
	Length          string
	Slot            string
	Mod             string
	Skill           string
	Notes           string
	CoverURL        string
	PreviewURL      string
	Type            string
	SubmittedBy     string
	SubmittedByName string
}

// Submit validates and persists a new beatmap submission, self-healing the
// submitter row on the way. Returns the new surrogate ID.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (uint64, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.URL) == "" || in.SubmittedBy == "" {
		return 0, svcErr.Validation("missing required fields")
	}
	if err := validateURL(in.URL); err != nil {
		return 0, err
	}
	if err := validateNumericFields(in.Stars, in.CS, in.AR, in.OD, in.BPM); err != nil {
		return 0, err
	}
	if in.Type != "" && in.Type != db.TypeSuggestion && in.Type != db.TypeBounty {
		return 0, svcErr.Validation("type must be suggestion or bounty")
	}

	hint := in.SubmittedByName
	if hint == "" {
		hint = fallbackSubmitter
	}

	bm := &db.Beatmap{
		Title:       in.Title,
		URL:         in.URL,
		Stars:       in.Stars,
		CS:          in.CS,
		AR:          in.AR,
		OD:          in.OD,
		BPM:         in.BPM,
		Length:      in.Length,
		Slot:        in.Slot,
		Mod:         in.Mod,
		Skill:       in.Skill,
		Notes:       in.Notes,
		CoverURL:    in.CoverURL,
		PreviewURL:  in.PreviewURL,
		Type:        in.Type,
		Status:      "pending",
		SubmittedBy: in.SubmittedBy,
	}
	if err := s.beatmapRepo.Create(ctx, bm, hint); err != nil {
		return 0, svcErr.Map(err)
	}

	s.appCtx.Logger.Info("beatmap submitted", "id", bm.ID, "title", bm.Title, "by", bm.SubmittedBy)
	return bm.ID, nil
}

// ListBeatmaps returns all submissions newest-first with submitter names and
// vote tallies.
func (s *Service) ListBeatmaps(ctx context.Context) ([]repository.BeatmapWithMeta, error) {
	rows, err := s.beatmapRepo.List(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return rows, nil
}

// UpdateInput is an owner patch: nil fields keep their stored values.
type UpdateInput struct {
	Title      *string
	URL        *string
	Stars      *string
	CS         *string
	AR         *string
	OD         *string
	BPM        *string
	Length     *string
	Slot       *string
	Mod        *string
	Skill      *string
	Notes      *string
	CoverURL   *string
	PreviewURL *string
	Type       *string
}

// UpdateBeatmap applies an owner patch. Fields absent from the patch fall
// back to stored values; Type falls back to the stored value or "bounty" if
// it was never set.
func (s *Service) UpdateBeatmap(ctx context.Context, id uint64, requesterID string, patch UpdateInput) error {
	if requesterID == "" {
		return svcErr.AuthRequired("user ID required (x-user-id missing)")
	}

	existing, err := s.beatmapRepo.Get(ctx, id)
	if err != nil {
		return svcErr.Map(err)
	}
	if existing.SubmittedBy != strings.TrimSpace(requesterID) {
		return svcErr.Forbidden("not allowed (not owner)")
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&existing.Title, patch.Title)
	apply(&existing.URL, patch.URL)
	apply(&existing.Stars, patch.Stars)
	apply(&existing.CS, patch.CS)
	apply(&existing.AR, patch.AR)
	apply(&existing.OD, patch.OD)
	apply(&existing.BPM, patch.BPM)
	apply(&existing.Length, patch.Length)
	apply(&existing.Slot, patch.Slot)
	apply(&existing.Mod, patch.Mod)
	apply(&existing.Skill, patch.Skill)
	apply(&existing.Notes, patch.Notes)
	apply(&existing.CoverURL, patch.CoverURL)
	apply(&existing.PreviewURL, patch.PreviewURL)

	switch {
	case patch.Type != nil && *patch.Type != "":
		existing.Type = *patch.Type
	case existing.Type == "":
		existing.Type = db.TypeBounty
	}

	if strings.TrimSpace(existing.Title) == "" || strings.TrimSpace(existing.URL) == "" {
		return svcErr.Validation("title and url cannot be emptied")
	}
	if err := validateURL(existing.URL); err != nil {
		return err
	}
	if err := validateNumericFields(existing.Stars, existing.CS, existing.AR, existing.OD, existing.BPM); err != nil {
		return err
	}

	if err := s.beatmapRepo.Save(ctx, existing); err != nil {
		return svcErr.Map(err)
	}
	return nil
}

// DeleteBeatmap removes a submission and cascades its votes and comments.
// Two authorization paths: owner match, or the shared admin secret.
func (s *Service) DeleteBeatmap(ctx context.Context, id uint64, requesterID, adminSecret string) error {
	admin := s.isAdminSecret(adminSecret)
	if requesterID == "" && !admin {
		return svcErr.AuthRequired("user ID required (x-user-id missing)")
	}

	existing, err := s.beatmapRepo.Get(ctx, id)
	if err != nil {
		return svcErr.Map(err)
	}
	if !admin && existing.SubmittedBy != strings.TrimSpace(requesterID) {
		return svcErr.Forbidden("not allowed (not owner)")
	}

	if err := s.beatmapRepo.DeleteCascade(ctx, id); err != nil {
		return svcErr.Map(err)
	}

	// Best-effort cache cleanup; DB is the source of truth.
	if err := s.appCtx.RedisCache.InvalidateTallies(ctx, id); err != nil {
		s.appCtx.Logger.Warn("failed to drop tally cache", "beatmap_id", id, "err", err)
	}

	s.appCtx.Logger.Info("beatmap deleted", "id", id, "admin", admin)
	return nil
}

//
// Votes
//

// VoteSummary is the read model for a beatmap's votes.
type VoteSummary struct {
	Upvotes   int64   `json:"upvotes"`
	Downvotes int64   `json:"downvotes"`
	UserVote  *string `json:"user_vote"`
}

// ApplyVote runs one toggle transition and keeps the tally cache in step.
// Returns the viewer's resulting state ("" means retracted).
func (s *Service) ApplyVote(ctx context.Context, beatmapID uint64, userID, voteType string) (string, error) {
	if voteType != db.VoteTypeUp && voteType != db.VoteTypeDown {
		return "", svcErr.Validation("invalid vote")
	}
	if userID == "" {
		return "", svcErr.AuthRequired("user ID required")
	}

	// Self-heal before touching the ledger so the vote never fails purely
	// because the user row was lost.
	if err := s.userRepo.Ensure(ctx, userID, fallbackVoter); err != nil {
		return "", svcErr.Map(err)
	}

	prev, cur, err := s.voteRepo.Apply(ctx, beatmapID, userID, voteType)
	if err != nil {
		return "", svcErr.Map(err)
	}

	// Best-effort tally cache adjustment per transition.
	if prev != "" {
		if err := s.appCtx.RedisCache.BumpTally(ctx, beatmapID, prev, -1); err != nil {
			s.appCtx.Logger.Warn("tally bump failed", "beatmap_id", beatmapID, "err", err)
		}
	}
	if cur != "" {
		if err := s.appCtx.RedisCache.BumpTally(ctx, beatmapID, cur, +1); err != nil {
			s.appCtx.Logger.Warn("tally bump failed", "beatmap_id", beatmapID, "err", err)
		}
	}

	return cur, nil
}

// GetVotes returns the tallies plus the viewer's own state (nil when the
// viewer is anonymous or has no standing vote).
//
// Cache-first: counts come from Redis when present, otherwise from the DB
// with the cache repopulated on the way out.
func (s *Service) GetVotes(ctx context.Context, beatmapID uint64, viewerID string) (*VoteSummary, error) {
	summary := &VoteSummary{}

	up, upOK, _ := s.appCtx.RedisCache.GetTally(ctx, beatmapID, db.VoteTypeUp)
	down, downOK, _ := s.appCtx.RedisCache.GetTally(ctx, beatmapID, db.VoteTypeDown)

	if !upOK || !downOK {
		var err error
		up, down, err = s.voteRepo.Counts(ctx, beatmapID)
		if err != nil {
			return nil, svcErr.Map(err)
		}
		// repopulate, best-effort
		_ = s.appCtx.RedisCache.SetTally(ctx, beatmapID, db.VoteTypeUp, up)
		_ = s.appCtx.RedisCache.SetTally(ctx, beatmapID, db.VoteTypeDown, down)
	}
	summary.Upvotes = up
	summary.Downvotes = down

	if viewerID != "" {
		state, err := s.voteRepo.UserVote(ctx, beatmapID, viewerID)
		if err != nil {
			return nil, svcErr.Map(err)
		}
		if state != "" {
			summary.UserVote = &state
		}
	}

	return summary, nil
}

//
// Comments
//

// AddComment appends a comment, self-healing the author row. The stored
// display name is the literal value supplied at post time.
func (s *Service) AddComment(ctx context.Context, beatmapID uint64, userID, displayName, text string) error {
	if strings.TrimSpace(text) == "" {
		return svcErr.Validation("empty comment")
	}
	if userID == "" {
		return svcErr.AuthRequired("user ID required")
	}

	hint := displayName
	if hint == "" {
		hint = fallbackCommenter
	}
	name := displayName
	if name == "" {
		name = fallbackAuthor
	}

	comment := &db.Comment{
		BeatmapID:   beatmapID,
		UserID:      userID,
		DisplayName: name,
		CommentText: text,
	}
	if err := s.commentRepo.Add(ctx, comment, hint); err != nil {
		return svcErr.Map(err)
	}
	return nil
}

// Comments returns a beatmap's comments newest-first.
func (s *Service) Comments(ctx context.Context, beatmapID uint64) ([]db.Comment, error) {
	comments, err := s.commentRepo.List(ctx, beatmapID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return comments, nil
}

// DeleteComment removes a comment. The handler gates this behind the admin
// secret.
func (s *Service) DeleteComment(ctx context.Context, id uint64) error {
	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return svcErr.Map(err)
	}
	return nil
}
