package community

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	svcErr "github.com/oggyb/mappool-community/internal/errors"
)

// Caller identity and admin secret travel as headers.
const (
	headerUserID      = "x-user-id"
	headerAdminSecret = "x-admin-secret"
)

func pathID(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, svcErr.Validation("invalid id")
	}
	return id, nil
}

//
// Users
//

type registerRequest struct {
	DisplayName string `json:"display_name"`
}

func (s *Service) handleRegister(c *gin.Context) {
	var body registerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		svcErr.Respond(c, svcErr.Validation("invalid request body"))
		return
	}

	user, err := s.Register(c.Request.Context(), body.DisplayName)
	if err != nil {
		svcErr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           user.ID,
		"display_name": user.DisplayName,
		"is_admin":     user.IsAdmin,
	})
}

func (s *Service) handleGetUser(c *gin.Context) {
	user, err := s.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		svcErr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":           user.ID,
		"display_name": user.DisplayName,
		"is_admin":     user.IsAdmin,
	})
}

type updateUserRequest struct {
	DisplayName *string `json:"display_name"`
	IsAdmin     *bool   `json:"is_admin"`
}

// handleUpdateUser covers both user mutations: the owner may rename
// themselves, and the admin secret may flip the admin flag.
func (s *Service) handleUpdateUser(c *gin.Context) {
	var body updateUserRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		svcErr.Respond(c, svcErr.Validation("invalid request body"))
		return
	}

	id := c.Param("id")
	ctx := c.Request.Context()

	if body.IsAdmin != nil {
		if !s.isAdminSecret(c.GetHeader(headerAdminSecret)) {
			svcErr.Respond(c, svcErr.Forbidden("admin secret required"))
			return
		}
		if err := s.SetAdmin(ctx, id, *body.IsAdmin); err != nil {
			svcErr.Respond(c, err)
			return
		}
	}

	if body.DisplayName != nil {
		requester := c.GetHeader(headerUserID)
		// the admin secret may rename on a user's behalf
		if s.isAdminSecret(c.GetHeader(headerAdminSecret)) {
			requester = id
		}
		if err := s.RenameUser(ctx, id, requester, *body.DisplayName); err != nil {
			svcErr.Respond(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

//
// Submissions
//

type submitRequest struct {
	Title           string `json:"title"`
	URL             string `json:"url"`
	Stars           string `json:"stars"`
	CS              string `json:"cs"`
	AR              string `json:"ar"`
	OD              string `json:"od"`
	BPM             string `json:"bpm"`
	Length          string `json:"length"`
	Slot            string `json:"slot"`
	Mod             string `json:"mod"`
	Skill           string `json:"skill"`
	Notes           string `json:"notes"`
	CoverURL        string `json:"cover_url"`
	PreviewURL      string `json:"preview_url"`
	Type            string `json:"type"`
	SubmittedBy     string `json:"submitted_by"`
	SubmittedByName string `json:"submitted_by_name"`
}

func (s *Service) handleSubmit(c *gin.Context) {
	var body submitRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		svcErr.Respond(c, svcErr.Validation("invalid request body"))
		return
	}

	id, err := s.Submit(c.Request.Context(), SubmitInput{
		Title:           body.Title,
		URL:             body.URL,
		Stars:           body.Stars,
		CS:              body.CS,
		AR:              body.AR,
		OD:              body.OD,
		BPM:             body.BPM,
		Length:          body.Length,
		Slot:            body.Slot,
		Mod:             body.Mod,
		Skill:           body.Skill,
		Notes:           body.Notes,
		CoverURL:        body.CoverURL,
		PreviewURL:      body.PreviewURL,
		Type:            body.Type,
		SubmittedBy:     body.SubmittedBy,
		SubmittedByName: body.SubmittedByName,
	})
	if err != nil {
		svcErr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

func (s *Service) handleList(c *gin.Context) {
	rows, err := s.ListBeatmaps(c.Request.Context())
	if err != nil {
		svcErr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

type updateBeatmapRequest struct {
	Title      *string `json:"title"`
	URL        *string `json:"url"`
	Stars      *string `json:"stars"`
	CS         *string `json:"cs"`
	AR         *string `json:"ar"`
	OD         *string `json:"od"`
	BPM        *string `json:"bpm"`
	Length     *string `json:"length"`
	Slot       *string `json:"slot"`
	Mod        *string `json:"mod"`
	Skill      *string `json:"skill"`
	Notes      *string `json:"notes"`
	CoverURL   *string `json:"cover_url"`
	PreviewURL *string `json:"preview_url"`
	Type       *string `json:"type"`
}

func (s *Service) handleUpdateBeatmap(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		svcErr.Respond(c, err)
		return
	}

	var body updateBeatmapRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		svcErr.Respond(c, svcErr.Validation("invalid request body"))
		return
	}

	err = s.UpdateBeatmap(c.Request.Context(), id, c.GetHeader(headerUserID), UpdateInput{
		Title:      body.Title,
		URL:        body.URL,
		Stars:      body.Stars,
		CS:         body.CS,
		AR:         body.AR,
		OD:         body.OD,
		BPM:        body.BPM,
		Length:     body.Length,
		Slot:       body.Slot,
		Mod:        body.Mod,
		Skill:      body.Skill,
		Notes:      body.Notes,
		CoverURL:   body.CoverURL,
		PreviewURL: body.PreviewURL,
		Type:       body.Type,
	})
	if err != nil {
		svcErr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Service) handleDeleteBeatmap(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		svcErr.Respond(c, err)
		return
	}

	err = s.DeleteBeatmap(c.Request.Context(), id, c.GetHeader(headerUserID), c.GetHeader(headerAdminSecret))
	if err != nil {
		svcErr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

//
// Votes
//

type voteRequest struct {
	UserID   string `json:"user_id"`
	VoteType string `json:"vote_type"`
}

func (s *Service) handleVote(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		svcErr.Respond(c, err)
		return
	}

	var body voteRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		svcErr.Respond(c, svcErr.Validation("invalid request body"))
		return
	}

	cur, err := s.ApplyVote(c.Request.Context(), id, body.UserID, body.VoteType)
	if err != nil {
		svcErr.Respond(c, err)
		return
	}

	resp := gin.H{"success": true, "user_vote": nil}
	if cur != "" {
		resp["user_vote"] = cur
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Service) handleGetVotes(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		svcErr.Respond(c, err)
		return
	}

	summary, err := s.GetVotes(c.Request.Context(), id, c.Query("user_id"))
	if err != nil {
		svcErr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

//
// Comments
//

type commentRequest struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	CommentText string `json:"comment_text"`
}

func (s *Service) handleAddComment(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		svcErr.Respond(c, err)
		return
	}

	var body commentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		svcErr.Respond(c, svcErr.Validation("invalid request body"))
		return
	}

	if err := s.AddComment(c.Request.Context(), id, body.UserID, body.DisplayName, body.CommentText); err != nil {
		svcErr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Service) handleListComments(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		svcErr.Respond(c, err)
		return
	}

	comments, err := s.Comments(c.Request.Context(), id)
	if err != nil {
		svcErr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (s *Service) handleDeleteComment(c *gin.Context) {
	if !s.isAdminSecret(c.GetHeader(headerAdminSecret)) {
		svcErr.Respond(c, svcErr.Forbidden("admin secret required"))
		return
	}

	id, err := pathID(c)
	if err != nil {
		svcErr.Respond(c, err)
		return
	}

	if err := s.DeleteComment(c.Request.Context(), id); err != nil {
		svcErr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
