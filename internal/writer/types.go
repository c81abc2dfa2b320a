// internal/writer/types.go
package writer

import (
	"context"

	"github.com/tamzrod/rover-logger/internal/poller"
)

// Sink persists poll snapshots.
// Init must be idempotent. Append is only called for successful polls.
type Sink interface {
	Init(ctx context.Context) error
	Append(ctx context.Context, res poller.PollResult) error
	DeleteRecordsOlderThan(ctx context.Context, days int) error
	Close() error
}

// ImagePlan places the register image of each snapshot on one endpoint.
type ImagePlan struct {
	Endpoint string
	UnitID   uint8
	Address  uint16
}

// StatusPlan places the device status block on one endpoint.
type StatusPlan struct {
	Endpoint   string
	UnitID     uint8
	BaseSlot   uint16
	DeviceName string
}

// endpointClient is the exact contract the register sinks use.
// IMPORTANT: There must be NO other version of this interface anywhere.
type endpointClient interface {
	WriteRegisters(area byte, unitID uint8, addr uint16, regs []uint16) error
}

// areaHoldingRegisters is the only area the register sinks write.
const areaHoldingRegisters byte = 3
