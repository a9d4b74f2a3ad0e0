package auth

import (
	"videotube/pkg/apierror"
	"videotube/pkg/models"
)

// RequireOwner rejects with 403 unless userID owns the resource.
func RequireOwner(ownerID, userID, message string) error {
	if ownerID == "" || ownerID != userID {
		return apierror.Forbidden(message)
	}
	return nil
}

// CanView hides unpublished videos from everyone but their owner.
func CanView(video *models.Video, viewerID string) error {
	if video.VisibleTo(viewerID) {
		return nil
	}
	return apierror.Forbidden("You are not allowed to view this unpublished video")
}
