//go:build protogen

package grpcserver

import (
	"context"
	"time"

	"google.golang.org/grpc"

	"github.com/bookora/bookora/libs/db"
	directoryv1 "github.com/bookora/bookora/protos/gen/directory/v1"
	"github.com/bookora/bookora/services/directory-service/internal/storage"
)

type server struct {
	directoryv1.UnimplementedDirectoryServiceServer
	pool *db.Pool
	repo *storage.Repository
}

func Register(grpcServer *grpc.Server, pool *db.Pool, repo *storage.Repository) {
	directoryv1.RegisterDirectoryServiceServer(grpcServer, &server{pool: pool, repo: repo})
}

func (s *server) GetAvailabilitySnapshot(ctx context.Context, req *directoryv1.AvailabilitySnapshotRequest) (*directoryv1.AvailabilitySnapshotResponse, error) {
	resp := &directoryv1.AvailabilitySnapshotResponse{
		BusinessId: req.GetBusinessId(),
		Timezone:   "UTC",
	}
	if req.GetBusinessId() == "" || req.GetServiceId() == "" || req.GetDate() == "" {
		return resp, nil
	}

	biz, err := s.repo.GetOrCreateBusiness(ctx, req.GetBusinessId())
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(biz.Timezone)
	if err != nil {
		loc = time.UTC
	}
	resp.Timezone = loc.String()
	resp.DepositCents = int64(biz.DepositCents)
	resp.Currency = biz.Currency

	date, err := time.ParseInLocation("2006-01-02", req.GetDate(), loc)
	if err != nil {
		return resp, nil
	}
	dayStart := date
	dayEnd := date.AddDate(0, 0, 1)

	svc, err := s.repo.GetService(ctx, req.GetBusinessId(), req.GetServiceId())
	if err != nil {
		return nil, err
	}
	resp.DurationMinutes = int32(svc.DurationMins)

	staffID := req.GetStaffId()
	if staffID == "any" {
		staffID = ""
	}
	windows, err := s.repo.ListWindowsForWeekday(ctx, req.GetBusinessId(), staffID, int(date.Weekday()))
	if err != nil {
		return nil, err
	}
	for _, w := range windows {
		resp.Windows = append(resp.Windows, &directoryv1.AvailabilityWindow{
			StaffId:     w.StaffID,
			Weekday:     int32(w.Weekday),
			StartMinute: int32(w.StartMinute),
			EndMinute:   int32(w.EndMinute),
		})
	}

	blackouts, err := s.repo.ListBlackouts(ctx, req.GetBusinessId(), staffID, dayStart.UTC(), dayEnd.UTC())
	if err != nil {
		return nil, err
	}
	for _, b := range blackouts {
		resp.Blackouts = append(resp.Blackouts, &directoryv1.Blackout{
			StaffId:  b.StaffID,
			StartUtc: b.StartTime.UTC().Format(time.RFC3339),
			EndUtc:   b.EndTime.UTC().Format(time.RFC3339),
		})
	}

	resp.DayStartUtc = dayStart.UTC().Format(time.RFC3339)
	resp.DayEndUtc = dayEnd.UTC().Format(time.RFC3339)
	return resp, nil
}
