package tsl_test

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanworks.io/rfid/tslgw/tsl"
)

func TestSplitter(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "version response",
			input:    "CS: .vr\r\nMF: TSL\r\nUF: 2.4.1\r\nOK:\r\n",
			expected: []string{"CS: .vr", "MF: TSL", "UF: 2.4.1", "OK:"},
		},
		{
			name:     "error terminated response",
			input:    "CS: .iv\r\nER:006\r\n",
			expected: []string{"CS: .iv", "ER:006"},
		},
		{
			name:     "streamed inventory lines",
			input:    "EP:3000E280689400005015A912\r\nRI:-62\r\nEP:3000E28068940000501577AA\r\nRI:-71\r\n",
			expected: []string{"EP:3000E280689400005015A912", "RI:-62", "EP:3000E28068940000501577AA", "RI:-71"},
		},
		{
			name:     "blank lines preserved as empty tokens",
			input:    "\r\n\r\nOK:\r\n",
			expected: []string{"", "", "OK:"},
		},
		{
			name:     "incomplete line at EOF",
			input:    "CS: .bl\r\nBP: 8",
			expected: []string{"CS: .bl", "BP: 8"},
		},
		{
			name:     "lone CR kept inside token",
			input:    "AB\rCD\r\n",
			expected: []string{"AB\rCD"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tokens []string
			scanner := bufio.NewScanner(strings.NewReader(tt.input))
			scanner.Split(tsl.Splitter)
			for scanner.Scan() {
				tokens = append(tokens, scanner.Text())
			}
			require.NoError(t, scanner.Err())
			assert.Equal(t, tt.expected, tokens)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected tsl.LineType
	}{
		{name: "command start", input: "CS: .vr", expected: tsl.TypeCommandStart},
		{name: "success terminator", input: "OK:", expected: tsl.TypeSuccess},
		{name: "error terminator", input: "ER:006", expected: tsl.TypeError},
		{name: "marked tag", input: "EP:3000E2806894", expected: tsl.TypeTag},
		{name: "bare hex tag", input: "3000E2806894", expected: tsl.TypeTag},
		{name: "reading", input: "RI:-64", expected: tsl.TypeReading},
		{name: "key value payload", input: "MF: TSL", expected: tsl.TypeData},
		{name: "free text", input: "Battery check", expected: tsl.TypeData},
		// "OK:" must match exactly; a prefixed variant is ordinary data.
		{name: "prefixed OK is not a terminator", input: "OK:ISH", expected: tsl.TypeData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tsl.Classify(tt.input), "input %q", tt.input)
		})
	}
}

func TestLineAccessors(t *testing.T) {
	assert.Equal(t, ".vr", tsl.Command("CS: .vr"))
	assert.Equal(t, ".iv", tsl.Command("CS:.iv"))
	assert.Equal(t, "006", tsl.ErrorCode("ER:006"))
	assert.Equal(t, "", tsl.ErrorCode("ER:"))
	assert.Equal(t, "3000E2806894", tsl.Tag("EP:3000E2806894"))
	assert.Equal(t, "3000E2806894", tsl.Tag("3000E2806894"))
	assert.Equal(t, "-64.5", tsl.Reading("RI: -64.5"))
}

func TestIsTag(t *testing.T) {
	assert.True(t, tsl.IsTag("EP:whatever"))
	assert.True(t, tsl.IsTag("3000e280689400005015a912"))
	assert.True(t, tsl.IsTag("ABCDEF"))
	assert.False(t, tsl.IsTag("MF: TSL"))
	assert.False(t, tsl.IsTag(""))
	assert.False(t, tsl.IsTag("hello"))
	assert.False(t, tsl.IsTag("OK:"))
}

func TestSplit(t *testing.T) {
	assert.Equal(t, []string{".ec on", ".iv", ".ec off"}, tsl.Split(".ec on;.iv;.ec off"))
	assert.Equal(t, []string{".vr"}, tsl.Split(" .vr "))
	assert.Nil(t, tsl.Split(" ; ;"))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Manufacturer", tsl.VersionLabel("MF"))
	assert.Equal(t, "Firmware version", tsl.VersionLabel("VR"), "legacy key")
	assert.Equal(t, "ZZ", tsl.VersionLabel("ZZ"), "unknown keys fall through")
	assert.Equal(t, "Charge level", tsl.BatteryLabel("BP"))
	assert.Equal(t, "Charge level", tsl.BatteryLabel("PC"))
	assert.Equal(t, "XX", tsl.BatteryLabel("XX"))
}

func TestStrengthPercent(t *testing.T) {
	tests := []struct {
		name     string
		dbm      float64
		expected int
	}{
		{name: "at floor", dbm: -90, expected: 0},
		{name: "below floor", dbm: -120, expected: 0},
		{name: "at ceiling", dbm: -25, expected: 100},
		{name: "above ceiling", dbm: -10, expected: 100},
		{name: "midpoint", dbm: -57.5, expected: 50},
		{name: "near floor", dbm: -89, expected: 2},
		{name: "near ceiling", dbm: -26, expected: 98},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tsl.StrengthPercent(tt.dbm))
		})
	}

	// Monotonic over the whole scale.
	prev := -1
	for dbm := -120.0; dbm <= 0; dbm += 0.5 {
		pct := tsl.StrengthPercent(dbm)
		require.GreaterOrEqual(t, pct, prev, "not monotonic at %v dBm", dbm)
		prev = pct
	}
}
