// internal/rover/registers.go
package rover

// Register is one fixed read geometry on the controller.
// Start is a register (word) address; Bytes is the payload length.
type Register struct {
	Name  string
	Start uint16
	Bytes int
}

// Words returns the number of 16-bit registers covered.
func (r Register) Words() uint16 { return uint16(r.Bytes / 2) }

// ---- SYSTEM INFO (read once per session) ----

var (
	RegSystemSpec     = Register{Name: "system_spec", Start: 0x000A, Bytes: 4}
	RegSystemModel    = Register{Name: "system_model", Start: 0x000C, Bytes: 16}
	RegSystemVersions = Register{Name: "system_versions", Start: 0x0014, Bytes: 8}
	RegSystemSerial   = Register{Name: "system_serial", Start: 0x0018, Bytes: 4}
)

// ---- PER-POLL BLOCKS ----

var (
	RegPowerStatus    = Register{Name: "power_status", Start: 0x0100, Bytes: 20}
	RegDailyStats     = Register{Name: "daily_stats", Start: 0x010B, Bytes: 20}
	RegHistoricalData = Register{Name: "historical_data", Start: 0x0115, Bytes: 22}
	RegStatus         = Register{Name: "status", Start: 0x0120, Bytes: 6}
)

// Scale factors.
const (
	voltScale   = 10.0
	ampScale    = 100.0
	maxAddress  = 0x1000
	maxWords    = 0x7D
	maxPayload  = 0xFA
	maxDeviceID = 0xF7
)

// DefaultAddress is the factory device address.
const DefaultAddress byte = 1
