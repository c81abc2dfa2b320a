// internal/status/constants.go
package status

// Poll Status Block layout constants.
// These values define the register layout and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of registers per status block.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the poll health state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the last error code (device exception or link class).
const SlotLastErrorCode = 1

// SlotSecondsInError holds the duration (in seconds) polls have been failing.
const SlotSecondsInError = 2

// SlotDailyMode holds the daily-stats correction mode (0 trusted, 1 untrusted).
const SlotDailyMode = 3

// SlotCarryOverWh holds the watt-hours carried into today's generation.
const SlotCarryOverWh = 4

// ---- RESERVED RANGE ----

// Slots 5-10 are reserved.
const SlotReservedStart = 5
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// Device name is always placed at the END of the status block.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// SecondsInErrorMax is where SecondsInError saturates.
const SecondsInErrorMax = 65535

// ---- HEALTH CODES ----

// HealthUnknown represents the boot state before the first poll.
const HealthUnknown uint16 = 0

// HealthOK represents a successful last poll.
const HealthOK uint16 = 1

// HealthError represents a failed last poll.
const HealthError uint16 = 2
