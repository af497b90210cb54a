package errors_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	svcErr "github.com/oggyb/mappool-community/internal/errors"
)

func TestMap(t *testing.T) {
	cases := []struct {
		name       string
		in         error
		wantStatus int
	}{
		{"record not found", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"duplicated key", gorm.ErrDuplicatedKey, http.StatusConflict},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"canceled", context.Canceled, 499},
		{"unknown", stderrors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantStatus, svcErr.Map(tc.in).Status)
		})
	}
}

func TestMap_NilPassesThrough(t *testing.T) {
	assert.Nil(t, svcErr.Map(nil))
}

func TestMap_KeepsBoundaryErrors(t *testing.T) {
	in := svcErr.Forbidden("not allowed (not owner)")
	assert.Same(t, in, svcErr.Map(in))

	// also when wrapped further down the stack
	wrapped := fmt.Errorf("delete beatmap: %w", svcErr.NotFound("record not found"))
	assert.Equal(t, http.StatusNotFound, svcErr.Map(wrapped).Status)
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	cause := stderrors.New("dial tcp: refused")
	err := svcErr.Upstream("failed to fetch beatmap info", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.Contains(t, err.Error(), "failed to fetch beatmap info")
	assert.Contains(t, err.Error(), "refused")
}
