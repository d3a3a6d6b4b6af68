package repo

import (
	"context"

	"sitewatch/model"
)

type IVisitorLogStorage interface {
	AppendVisit(ctx context.Context, visit model.VisitorEvent) error
	RecentVisits(ctx context.Context, limit int) ([]model.VisitorEvent, error)
}
