package tsl

// Field keys that get unit suffixes when stored.
const (
	FieldBatteryVoltage = "BV"
	FieldChargePercent  = "PC"
	FieldChargePercent2 = "BP"
)

// versionLabels maps .vr payload field keys to human-readable labels.
var versionLabels = map[string]string{
	"MF": "Manufacturer",
	"US": "Unit serial",
	"PV": "Protocol version",
	"UF": "Firmware version",
	"UB": "Bootloader version",
	"RS": "RFID serial",
	"RF": "RFID firmware",
	"RB": "RFID bootloader",
	"AS": "Assembly serial",
	"BA": "Bluetooth address",
	"BV": "Battery voltage",
	// older field names for compatibility
	"VR": "Firmware version",
	"AP": "Model",
	"SN": "Serial number",
}

// batteryLabels maps .bl payload field keys to human-readable labels.
var batteryLabels = map[string]string{
	"BV": "Battery voltage",
	"PC": "Charge level",
	"BP": "Charge level",
	"CH": "Charging state",
}

// VersionLabel returns the display label for a .vr field key, falling
// back to the raw key when unrecognized.
func VersionLabel(key string) string {
	if l, ok := versionLabels[key]; ok {
		return l
	}
	return key
}

// BatteryLabel returns the display label for a .bl field key, falling
// back to the raw key when unrecognized.
func BatteryLabel(key string) string {
	if l, ok := batteryLabels[key]; ok {
		return l
	}
	return key
}
