package schema

import "fmt"

// UpstreamVersion is the OpenXR Toolkit release whose interfaces.h the
// tables below mirror. Bump it together with any ordinal change.
const UpstreamVersion = "1.3.2"

// Ordinals must match the toolkit's compiled enums bit for bit: the layer
// reads these registry values back as raw integers.
var (
	// OnOff is the toolkit's plain boolean enum.
	OnOff = []LegalValue{
		{Ordinal: 0, Label: "Off"},
		{Ordinal: 1, Label: "On"},
	}

	// DefaultOnOff lets a setting defer to the runtime default.
	DefaultOnOff = []LegalValue{
		{Ordinal: 0, Label: "Default"},
		{Ordinal: 1, Label: "Off"},
		{Ordinal: 2, Label: "On"},
	}

	// ScalingType mirrors enum class ScalingType { None = 0, NIS, FSR, CAS }.
	ScalingType = []LegalValue{
		{Ordinal: 0, Label: "Off"},
		{Ordinal: 1, Label: "NIS"},
		{Ordinal: 2, Label: "FSR"},
		{Ordinal: 3, Label: "CAS"},
	}

	// FirstRun is the first-run banner marker. 8 is the toolkit's "shown" value.
	FirstRun = []LegalValue{
		{Ordinal: 0, Label: "Off"},
		{Ordinal: 8, Label: "On"},
	}

	// VariableShadingRateType mirrors enum class VariableShadingRateType.
	VariableShadingRateType = []LegalValue{
		{Ordinal: 0, Label: "Off"},
		{Ordinal: 1, Label: "Preset"},
		{Ordinal: 2, Label: "Custom"},
	}

	// VRSRatio mirrors enum class VariableShadingRateVal.
	VRSRatio = []LegalValue{
		{Ordinal: 0, Label: "x1"},
		{Ordinal: 1, Label: "x1_2"},
		{Ordinal: 2, Label: "x1_4"},
		{Ordinal: 3, Label: "x1_8"},
		{Ordinal: 4, Label: "x1_16"},
	}

	// MotionReprojectionRate mirrors enum class MotionReprojectionRate { Off = 1, R_45Hz, R_30Hz, R_22Hz }.
	MotionReprojectionRate = []LegalValue{
		{Ordinal: 1, Label: "Off"},
		{Ordinal: 2, Label: "R_45Hz"},
		{Ordinal: 3, Label: "R_30Hz"},
		{Ordinal: 4, Label: "R_22Hz"},
	}

	// PostSunGlasses mirrors enum class PostSunGlassesType { None = 0, Light, Dark, Night }.
	PostSunGlasses = []LegalValue{
		{Ordinal: 0, Label: "Off"},
		{Ordinal: 1, Label: "Light"},
		{Ordinal: 2, Label: "Dark"},
		{Ordinal: 3, Label: "Night"},
	}

	// OverlayType mirrors enum class OverlayType { None = 0, FPS, Advanced, Developer }.
	OverlayType = []LegalValue{
		{Ordinal: 0, Label: "Off"},
		{Ordinal: 1, Label: "FPS"},
		{Ordinal: 2, Label: "Advanced"},
		{Ordinal: 3, Label: "Developer"},
	}

	// VirtualKey holds the Win32 virtual-key codes accepted by the menu key bindings.
	VirtualKey = virtualKeys()
)

func virtualKeys() []LegalValue {
	keys := []LegalValue{
		{Ordinal: 0x08, Label: "Backspace"},
		{Ordinal: 0x09, Label: "Tab"},
		{Ordinal: 0x0D, Label: "Enter"},
		{Ordinal: 0x10, Label: "Shift"},
		{Ordinal: 0x11, Label: "Ctrl"},
		{Ordinal: 0x12, Label: "Alt"},
		{Ordinal: 0x13, Label: "Pause"},
		{Ordinal: 0x20, Label: "Space"},
		{Ordinal: 0x21, Label: "PageUp"},
		{Ordinal: 0x22, Label: "PageDown"},
		{Ordinal: 0x23, Label: "End"},
		{Ordinal: 0x24, Label: "Home"},
		{Ordinal: 0x25, Label: "Left"},
		{Ordinal: 0x26, Label: "Up"},
		{Ordinal: 0x27, Label: "Right"},
		{Ordinal: 0x28, Label: "Down"},
		{Ordinal: 0x2C, Label: "PrintScreen"},
		{Ordinal: 0x2D, Label: "Insert"},
		{Ordinal: 0x2E, Label: "Delete"},
	}
	for c := '0'; c <= '9'; c++ {
		keys = append(keys, LegalValue{Ordinal: int64(c), Label: string(c)})
	}
	for c := 'A'; c <= 'Z'; c++ {
		keys = append(keys, LegalValue{Ordinal: int64(c), Label: string(c)})
	}
	for n := 0; n < 12; n++ {
		keys = append(keys, LegalValue{Ordinal: int64(0x70 + n), Label: fmt.Sprintf("F%d", n+1)})
	}
	return keys
}
