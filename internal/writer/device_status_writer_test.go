// internal/writer/device_status_writer_test.go
package writer

import (
	"testing"

	"github.com/tamzrod/rover-logger/internal/status"
)

func newTestStatusWriter(cli endpointClient) *deviceStatusWriter {
	return NewDeviceStatusWriter(StatusPlan{
		Endpoint:   "status-endpoint",
		UnitID:     1,
		BaseSlot:   2,
		DeviceName: "ROVER-01",
	}, cli)
}

func TestDeviceNameWrittenOnFullAssertOnly(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := newTestStatusWriter(cli)

	// ---- first write: FULL ASSERT ----
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOK}); err != nil {
		t.Fatalf("initial full assert failed: %v", err)
	}

	if len(cli.lastRegs) != status.SlotsPerDevice {
		t.Fatalf("expected full block write (%d regs), got %d", status.SlotsPerDevice, len(cli.lastRegs))
	}
	if cli.writes[0].addr != 2*status.SlotsPerDevice {
		t.Fatalf("expected base address %d, got %d", 2*status.SlotsPerDevice, cli.writes[0].addr)
	}

	name := status.EncodeDeviceName("ROVER-01")
	for i := 0; i < status.SlotDeviceNameSlots; i++ {
		slot := status.SlotDeviceNameStart + i
		if cli.lastRegs[slot] != name[i] {
			t.Fatalf("device name slot %d mismatch: got=%d want=%d", slot, cli.lastRegs[slot], name[i])
		}
	}

	// ---- second write: INCREMENTAL ONLY ----
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError, LastErrorCode: 0x0102, SecondsInError: 1}); err != nil {
		t.Fatalf("incremental write failed: %v", err)
	}

	incremental := cli.writes[1:]
	if len(incremental) != 3 {
		t.Fatalf("expected 3 single-slot writes, got %d", len(incremental))
	}
	for _, w := range incremental {
		if w.qty != 1 {
			t.Fatalf("incremental update must not rewrite the block, got qty=%d", w.qty)
		}
	}
}

func TestStatusWriter_UnchangedSnapshotWritesNothing(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := newTestStatusWriter(cli)

	s := status.Snapshot{Health: status.HealthOK, DailyUntrusted: true, CarryOverWh: 40}
	_ = sw.WriteStatus(s)
	_ = sw.WriteStatus(s)

	if len(cli.writes) != 1 {
		t.Fatalf("expected only the initial full write, got %d writes", len(cli.writes))
	}
}

func TestStatusWriter_DailySlots(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := newTestStatusWriter(cli)

	_ = sw.WriteStatus(status.Snapshot{Health: status.HealthOK})
	_ = sw.WriteStatus(status.Snapshot{Health: status.HealthOK, DailyUntrusted: true})

	last := cli.writes[len(cli.writes)-1]
	if last.addr != 2*status.SlotsPerDevice+status.SlotDailyMode || cli.lastRegs[0] != 1 {
		t.Fatalf("expected daily mode slot write, got %+v regs=%v", last, cli.lastRegs)
	}
}

func TestStatusWriter_FullReassertAfterFailure(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := newTestStatusWriter(cli)

	_ = sw.WriteStatus(status.Snapshot{Health: status.HealthOK})

	cli.fail = true
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError, LastErrorCode: 2}); err == nil {
		t.Fatalf("expected error, got nil")
	}

	cli.fail = false
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError, LastErrorCode: 2, SecondsInError: 5}); err != nil {
		t.Fatalf("recovery write failed: %v", err)
	}

	if len(cli.lastRegs) != status.SlotsPerDevice {
		t.Fatalf("expected full re-assert after failure, got %d regs", len(cli.lastRegs))
	}
	if cli.lastRegs[status.SlotSecondsInError] != 5 {
		t.Fatalf("expected seconds_in_error=5, got %d", cli.lastRegs[status.SlotSecondsInError])
	}
}

func TestSecondsInErrorResetOnRecovery(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := newTestStatusWriter(cli)

	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError, LastErrorCode: 42, SecondsInError: 3}); err != nil {
		t.Fatalf("error snapshot write failed: %v", err)
	}
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOK}); err != nil {
		t.Fatalf("recovery snapshot write failed: %v", err)
	}

	var sawReset bool
	for _, w := range cli.writes[1:] {
		if w.addr == 2*status.SlotsPerDevice+status.SlotSecondsInError {
			sawReset = true
		}
	}
	if !sawReset {
		t.Fatalf("expected seconds_in_error slot to be rewritten on recovery")
	}
}

func TestBuildStatusPlan_SlotRange(t *testing.T) {
	unit := uint8(3)
	slot := uint16(4000)
	if _, err := BuildStatusPlan(cfgRegisters(&unit, &slot)); err == nil {
		t.Fatalf("expected out of range error, got nil")
	}

	slot = 10
	plan, err := BuildStatusPlan(cfgRegisters(&unit, &slot))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.UnitID != 3 || plan.BaseSlot != 10 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
}
