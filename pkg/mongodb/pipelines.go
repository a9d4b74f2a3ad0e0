package mongodb

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"videotube/pkg/models"
	"videotube/pkg/query"
)

// ownerProjection is everything a joined user is allowed to expose.
var ownerProjection = bson.D{
	{Key: "username", Value: 1},
	{Key: "fullName", Value: 1},
	{Key: "avatar", Value: 1},
}

// search matches text literally and case-insensitively.
func search(text string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"}
}

func sortStage(p query.Params) bson.D {
	dir := 1
	if p.Sort.Desc {
		dir = -1
	}
	return bson.D{{Key: "$sort", Value: bson.D{
		{Key: p.Sort.Field.Bson, Value: dir},
		{Key: "_id", Value: 1},
	}}}
}

// lookupUser joins one user summary onto localField as `as`, keeping
// documents whose user is missing.
func lookupUser(localField, as string) []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: colUsers},
			{Key: "localField", Value: localField},
			{Key: "foreignField", Value: "_id"},
			{Key: "pipeline", Value: bson.A{bson.D{{Key: "$project", Value: ownerProjection}}}},
			{Key: "as", Value: as},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$" + as},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}

// lookupLikes joins the likes of each video as `as`, carrying only likedBy.
func lookupLikes(as string) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: colLikes},
		{Key: "let", Value: bson.D{{Key: "targetId", Value: "$_id"}}},
		{Key: "pipeline", Value: bson.A{
			bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{{Key: "$and", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$target", "$$targetId"}}},
				bson.D{{Key: "$eq", Value: bson.A{"$targetType", string(models.LikeVideo)}}},
			}}}}}}},
			bson.D{{Key: "$project", Value: bson.D{{Key: "likedBy", Value: 1}}}},
		}},
		{Key: "as", Value: as},
	}}}
}

// paged appends the facet that returns the total match count next to the
// skip/limit window; data stages run on the window only.
func paged(pipeline mongo.Pipeline, p query.Params, data ...bson.D) mongo.Pipeline {
	window := bson.A{
		bson.D{{Key: "$skip", Value: p.Skip()}},
		bson.D{{Key: "$limit", Value: p.Limit}},
	}
	for _, stage := range data {
		window = append(window, stage)
	}
	return append(pipeline, bson.D{{Key: "$facet", Value: bson.D{
		{Key: "metadata", Value: bson.A{bson.D{{Key: "$count", Value: "total"}}}},
		{Key: "data", Value: window},
	}}})
}

func match(filter bson.D) bson.D {
	return bson.D{{Key: "$match", Value: filter}}
}

// visibleTo keeps published videos and the drafts owned by viewerID.
func visibleTo(viewerID string) bson.D {
	return match(bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "isPublished", Value: true}},
		bson.D{{Key: "owner", Value: viewerID}},
	}}})
}

func videoListPipeline(p query.Params) mongo.Pipeline {
	filter := bson.D{{Key: "isPublished", Value: true}}
	if p.OwnerID != "" {
		filter = append(filter, bson.E{Key: "owner", Value: p.OwnerID})
	}
	if p.Search != "" {
		filter = append(filter, bson.E{Key: "title", Value: search(p.Search)})
	}
	return paged(mongo.Pipeline{match(filter), sortStage(p)}, p, lookupUser("owner", "ownerDetails")...)
}

func videoDetailPipeline(id, viewerID string) mongo.Pipeline {
	pipeline := mongo.Pipeline{match(bson.D{{Key: "_id", Value: id}})}
	pipeline = append(pipeline, lookupUser("owner", "ownerDetails")...)
	return append(pipeline,
		lookupLikes("likes"),
		bson.D{{Key: "$addFields", Value: bson.D{
			{Key: "likesCount", Value: bson.D{{Key: "$size", Value: "$likes"}}},
			{Key: "isLiked", Value: bson.D{{Key: "$in", Value: bson.A{viewerID, "$likes.likedBy"}}}},
		}}},
		bson.D{{Key: "$project", Value: bson.D{{Key: "likes", Value: 0}}}},
	)
}

func commentsPipeline(videoID string, p query.Params) mongo.Pipeline {
	return paged(mongo.Pipeline{
		match(bson.D{{Key: "video", Value: videoID}}),
		sortStage(p),
	}, p, lookupUser("owner", "ownerDetails")...)
}

func tweetsPipeline(p query.Params) mongo.Pipeline {
	filter := bson.D{{Key: "owner", Value: p.OwnerID}}
	if p.Search != "" {
		filter = append(filter, bson.E{Key: "content", Value: search(p.Search)})
	}
	return paged(mongo.Pipeline{match(filter), sortStage(p)}, p, lookupUser("owner", "ownerDetails")...)
}

// likedVideosPipeline joins the video before counting so likes on deleted
// videos, or on drafts of other users, are neither counted nor returned.
func likedVideosPipeline(userID string, p query.Params) mongo.Pipeline {

	data := lookupUser("video.owner", "video.ownerDetails")
	data = append(data, bson.D{{Key: "$project", Value: bson.D{
		{Key: "_id", Value: 0},
		{Key: "video", Value: 1},
		{Key: "likedAt", Value: "$createdAt"},
	}}})

	return paged(mongo.Pipeline{
		match(bson.D{
			{Key: "likedBy", Value: userID},
			{Key: "targetType", Value: string(models.LikeVideo)},
		}),
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: colVideos},
			{Key: "localField", Value: "target"},
			{Key: "foreignField", Value: "_id"},
			{Key: "pipeline", Value: bson.A{visibleTo(userID)}},
			{Key: "as", Value: "video"},
		}}},
		{{Key: "$unwind", Value: "$video"}},
		sortStage(p),
	}, p, data...)
}

// playlistStages joins the videos viewerID may see and narrows the id list
// and count to them, so other users' drafts never surface through a playlist.
func playlistStages(viewerID string) []bson.D {
	stages := []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: colVideos},
			{Key: "localField", Value: "videos"},
			{Key: "foreignField", Value: "_id"},
			{Key: "pipeline", Value: bson.A{visibleTo(viewerID)}},
			{Key: "as", Value: "videoDetails"},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "videos", Value: bson.D{{Key: "$filter", Value: bson.D{
				{Key: "input", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$videos", bson.A{}}}}},
				{Key: "cond", Value: bson.D{{Key: "$in", Value: bson.A{"$$this", "$videoDetails._id"}}}},
			}}}},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "videoCount", Value: bson.D{{Key: "$size", Value: "$videos"}}},
		}}},
	}
	return append(stages, lookupUser("owner", "ownerDetails")...)
}

func playlistDetailPipeline(id, viewerID string) mongo.Pipeline {
	pipeline := mongo.Pipeline{match(bson.D{{Key: "_id", Value: id}})}
	return append(pipeline, playlistStages(viewerID)...)
}

func userPlaylistsPipeline(ownerID, viewerID string, p query.Params) mongo.Pipeline {
	return paged(mongo.Pipeline{
		match(bson.D{{Key: "owner", Value: ownerID}}),
		sortStage(p),
	}, p, playlistStages(viewerID)...)
}

// subscriptionsPipeline lists pairs where field equals id and joins the
// user on the other side of each pair.
func subscriptionsPipeline(field, id, other string, p query.Params) mongo.Pipeline {
	data := lookupUser(other, "user")
	data = append(data, bson.D{{Key: "$project", Value: bson.D{
		{Key: "_id", Value: 0},
		{Key: "user", Value: 1},
		{Key: "subscribedAt", Value: "$createdAt"},
	}}})
	return paged(mongo.Pipeline{
		match(bson.D{{Key: field, Value: id}}),
		sortStage(p),
	}, p, data...)
}

func channelProfilePipeline(username, viewerID string) mongo.Pipeline {
	lookupSubs := func(foreignField, as string) bson.D {
		return bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: colSubscriptions},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: foreignField},
			{Key: "as", Value: as},
		}}}
	}
	return mongo.Pipeline{
		match(bson.D{{Key: "username", Value: username}}),
		lookupSubs("channel", "subscribers"),
		lookupSubs("subscriber", "subscribedTo"),
		{{Key: "$project", Value: bson.D{
			{Key: "username", Value: 1},
			{Key: "email", Value: 1},
			{Key: "fullName", Value: 1},
			{Key: "avatar", Value: 1},
			{Key: "coverImage", Value: 1},
			{Key: "createdAt", Value: 1},
			{Key: "subscribersCount", Value: bson.D{{Key: "$size", Value: "$subscribers"}}},
			{Key: "channelsSubscribedToCount", Value: bson.D{{Key: "$size", Value: "$subscribedTo"}}},
			{Key: "isSubscribed", Value: bson.D{{Key: "$in", Value: bson.A{viewerID, "$subscribers.subscriber"}}}},
		}}},
	}
}

func videosWithOwnersPipeline(ids []string, viewerID string) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		match(bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}),
		visibleTo(viewerID),
	}
	return append(pipeline, lookupUser("owner", "ownerDetails")...)
}

// watchHistoryUpdate moves videoID to the front of watchHistory, drops any
// earlier occurrence and caps the length, in one atomic update.
func watchHistoryUpdate(videoID string, limit int) mongo.Pipeline {
	previous := bson.D{{Key: "$filter", Value: bson.D{
		{Key: "input", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$watchHistory", bson.A{}}}}},
		{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", videoID}}}},
	}}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "watchHistory", Value: bson.D{{Key: "$slice", Value: bson.A{
				bson.D{{Key: "$concatArrays", Value: bson.A{bson.A{videoID}, previous}}},
				limit,
			}}}},
			{Key: "updatedAt", Value: "$$NOW"},
		}}},
	}
}

func channelVideosPipeline(channelID string, p query.Params) mongo.Pipeline {
	return paged(mongo.Pipeline{
		match(bson.D{{Key: "owner", Value: channelID}}),
		sortStage(p),
	}, p,
		lookupLikes("likes"),
		bson.D{{Key: "$addFields", Value: bson.D{
			{Key: "likesCount", Value: bson.D{{Key: "$size", Value: "$likes"}}},
		}}},
		bson.D{{Key: "$project", Value: bson.D{{Key: "likes", Value: 0}}}},
	)
}

func channelTotalsPipeline(channelID string) mongo.Pipeline {
	return mongo.Pipeline{
		match(bson.D{{Key: "owner", Value: channelID}}),
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalVideos", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "totalViews", Value: bson.D{{Key: "$sum", Value: "$views"}}},
		}}},
	}
}
