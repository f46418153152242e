//go:build protogen

package directory

import (
	"context"
	"time"

	"google.golang.org/grpc"

	"github.com/bookora/bookora/libs/grpcx"
	directoryv1 "github.com/bookora/bookora/protos/gen/directory/v1"
)

// GRPCClient is the production snapshot transport. It satisfies Provider and
// replaces the HTTP client when the generated stubs are built in.
type GRPCClient struct {
	conn   *grpc.ClientConn
	client directoryv1.DirectoryServiceClient
}

func NewGRPCClient(addr string) (*GRPCClient, error) {
	conn, err := grpcx.Dial(addr)
	if err != nil {
		return nil, err
	}
	return &GRPCClient{
		conn:   conn,
		client: directoryv1.NewDirectoryServiceClient(conn),
	}, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) AvailabilitySnapshot(ctx context.Context, businessID, serviceID, staffID, date string) (Snapshot, error) {
	resp, err := c.client.GetAvailabilitySnapshot(ctx, &directoryv1.AvailabilitySnapshotRequest{
		BusinessId: businessID,
		ServiceId:  serviceID,
		StaffId:    staffID,
		Date:       date,
	})
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		BusinessID:      resp.GetBusinessId(),
		Timezone:        resp.GetTimezone(),
		DurationMinutes: int(resp.GetDurationMinutes()),
		DepositCents:    int(resp.GetDepositCents()),
		Currency:        resp.GetCurrency(),
	}
	if snap.DayStart, err = time.Parse(time.RFC3339, resp.GetDayStartUtc()); err != nil {
		return Snapshot{}, err
	}
	if snap.DayEnd, err = time.Parse(time.RFC3339, resp.GetDayEndUtc()); err != nil {
		return Snapshot{}, err
	}
	for _, w := range resp.GetWindows() {
		snap.Windows = append(snap.Windows, SnapshotWindow{
			StaffID:     w.GetStaffId(),
			Weekday:     int(w.GetWeekday()),
			StartMinute: int(w.GetStartMinute()),
			EndMinute:   int(w.GetEndMinute()),
		})
	}
	for _, b := range resp.GetBlackouts() {
		start, err := time.Parse(time.RFC3339, b.GetStartUtc())
		if err != nil {
			return Snapshot{}, err
		}
		end, err := time.Parse(time.RFC3339, b.GetEndUtc())
		if err != nil {
			return Snapshot{}, err
		}
		snap.Blackouts = append(snap.Blackouts, SnapshotBlackout{StaffID: b.GetStaffId(), Start: start, End: end})
	}
	return snap, nil
}
