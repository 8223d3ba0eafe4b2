package adapter

import "testing"

func TestMatchCaptureDevice(t *testing.T) {
	guid := "{B3AF4A2D-0F3C-4E9B-8D91-111122223333}"
	devices := []string{
		`\Device\NPF_{DEADBEEF-0000-4444-8888-999900001111}`,
		`\Device\NPF_` + guid,
		`\Device\NPF_Loopback`,
	}

	tests := []struct {
		name      string
		adapterID string
		want      string
	}{
		{"token embedded in device path", guid, `\Device\NPF_` + guid},
		{"case insensitive", "{b3af4a2d-0f3c-4e9b-8d91-111122223333}", `\Device\NPF_` + guid},
		{"truncated device inside adapter token", `\Device\NPF_` + guid + "_extra", `\Device\NPF_` + guid},
		{"no match", "{00000000-0000-0000-0000-000000000000}", ""},
		{"empty adapter id", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchCaptureDevice(tt.adapterID, devices); got != tt.want {
				t.Errorf("matchCaptureDevice(%q) = %q, want %q", tt.adapterID, got, tt.want)
			}
		})
	}
}

func TestMatchCaptureDeviceDeterministic(t *testing.T) {
	devices := []string{"eth0", "eth0.100"}
	first := matchCaptureDevice("eth0", devices)
	for i := 0; i < 10; i++ {
		if got := matchCaptureDevice("eth0", devices); got != first {
			t.Fatalf("matching not deterministic: %q then %q", first, got)
		}
	}
	if first != "eth0" {
		t.Errorf("match = %q, want first device-list hit", first)
	}
}

func TestMaskString(t *testing.T) {
	tests := []struct {
		prefix int
		want   string
	}{
		{24, "255.255.255.0"},
		{16, "255.255.0.0"},
		{30, "255.255.255.252"},
		{0, "0.0.0.0"},
		{32, "255.255.255.255"},
		{-1, ""},
		{33, ""},
	}
	for _, tt := range tests {
		if got := maskString(tt.prefix); got != tt.want {
			t.Errorf("maskString(%d) = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}
