package services

import (
	"context"

	"videotube/pkg/models"
	"videotube/pkg/query"
	"videotube/pkg/store"
)

type DashboardService struct {
	dashboard store.DashboardStore
}

func NewDashboardService(dashboard store.DashboardStore) *DashboardService {
	return &DashboardService{dashboard: dashboard}
}

func (s *DashboardService) Stats(ctx context.Context, channelID string) (*models.ChannelStats, error) {
	stats, err := s.dashboard.GetChannelStats(ctx, channelID)
	return stats, wrap("channel stats", err)
}

// Videos lists every video of the channel, drafts included.
func (s *DashboardService) Videos(ctx context.Context, channelID string, p query.Params) (*query.Page[models.DashboardVideo], error) {
	page, err := s.dashboard.ListChannelVideos(ctx, channelID, p)
	return page, wrap("channel videos", err)
}
