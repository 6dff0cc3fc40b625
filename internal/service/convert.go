package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/pricediary/internal/auth"
	"github.com/mmynk/pricediary/internal/calculator"
	"github.com/mmynk/pricediary/internal/middleware"
	"github.com/mmynk/pricediary/internal/models"
	"github.com/mmynk/pricediary/pkg/api"
)

// errInternal hides store and identity failures from clients.
var errInternal = errors.New("internal error, please try again")

// internalError logs err and returns a generic internal Connect error.
func internalError(logger *slog.Logger, msg string, err error, args ...any) error {
	logger.Error(msg, append(args, "error", err)...)
	return connect.NewError(connect.CodeInternal, errInternal)
}

func invalidArgument(err error) error {
	return connect.NewError(connect.CodeInvalidArgument, err)
}

// currentUser returns the authenticated user ID set by middleware.RequireAuth.
func currentUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		Id:        u.ID,
		Email:     u.Email,
		CreatedAt: formatTime(u.CreatedAt),
	}
}

func toAPIProfile(p *models.Profile) *api.Profile {
	if p == nil {
		return nil
	}
	return &api.Profile{
		Id:        p.ID,
		Email:     p.Email,
		FamilyId:  p.FamilyID,
		CreatedAt: formatTime(p.CreatedAt),
	}
}

func toAPIEntry(e *models.PriceEntry) *api.PriceEntry {
	if e == nil {
		return nil
	}
	return &api.PriceEntry{
		Id:            e.ID,
		UserId:        e.UserID,
		Category:      string(e.Category),
		ProductName:   e.ProductName,
		ProductKey:    e.ProductKey,
		PackageSize:   e.PackageSize,
		Store:         e.Store,
		Price:         e.Price,
		Date:          e.Date.Format(models.DateLayout),
		Note:          e.Note,
		CreatedAt:     formatTime(e.CreatedAt),
		GlobalEntryId: e.GlobalEntryID,
	}
}

func toAPIEntries(list []*models.PriceEntry) []*api.PriceEntry {
	out := make([]*api.PriceEntry, len(list))
	for i, e := range list {
		out[i] = toAPIEntry(e)
	}
	return out
}

func toAPIStats(s *calculator.Stats) *api.ProductStats {
	if s == nil {
		return nil
	}
	return &api.ProductStats{
		Min:   s.Min,
		Max:   s.Max,
		Avg:   s.Avg,
		Count: s.Count,
		Last:  toAPIEntry(s.Last),
	}
}

func toAPIPoints(points []calculator.Point) []*api.ChartPoint {
	out := make([]*api.ChartPoint, len(points))
	for i, p := range points {
		out[i] = &api.ChartPoint{Date: p.Date.Format(models.DateLayout), Price: p.Price}
	}
	return out
}
