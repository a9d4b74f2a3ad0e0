package auth

import (
	"net/http"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"videotube/pkg/apierror"
	"videotube/pkg/models"
)

func TestRequireOwner(t *testing.T) {
	assert.NoError(t, RequireOwner("u1", "u1", "nope"))

	err := RequireOwner("u1", "u2", "You are not allowed to update this tweet")
	assert.Equal(t, http.StatusForbidden, apierror.StatusOf(err))
	assert.Equal(t, "You are not allowed to update this tweet", apierror.From(err).Message)

	assert.Error(t, RequireOwner("", "", "nope"))
}

func TestCanView(t *testing.T) {
	published := &models.Video{OwnerID: "owner", IsPublished: true}
	draft := &models.Video{OwnerID: "owner"}

	assert.NoError(t, CanView(published, "stranger"))
	assert.NoError(t, CanView(draft, "owner"))
	assert.Equal(t, http.StatusForbidden, apierror.StatusOf(CanView(draft, "stranger")))
	assert.Error(t, CanView(draft, ""))
}

func TestProperty_OnlyOwnerPasses(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("non-owners are always rejected", prop.ForAll(
		func(owner, user string) bool {
			err := RequireOwner(owner, user, "forbidden")
			if owner != "" && owner == user {
				return err == nil
			}
			return apierror.StatusOf(err) == http.StatusForbidden
		},
		gen.OneGenOf(gen.Const("a"), gen.Const("b"), gen.Const(""), gen.Identifier()),
		gen.OneGenOf(gen.Const("a"), gen.Const("b"), gen.Const(""), gen.Identifier()),
	))

	properties.Property("unpublished videos are visible to the owner only", prop.ForAll(
		func(owner, viewer string, published bool) bool {
			err := CanView(&models.Video{OwnerID: owner, IsPublished: published}, viewer)
			if published || owner == viewer {
				return err == nil
			}
			return apierror.StatusOf(err) == http.StatusForbidden
		},
		gen.Identifier(),
		gen.OneGenOf(gen.Const("owner"), gen.Identifier()),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
