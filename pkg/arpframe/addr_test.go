package arpframe

import (
	"bytes"
	"errors"
	"net"
	"testing"
)

func TestParseMACRoundTrip(t *testing.T) {
	macs := []net.HardwareAddr{
		{0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff},
		{0x02, 0x42, 0xac, 0x11, 0x00, 0x02},
		{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
	}
	for _, mac := range macs {
		parsed, err := ParseMAC(FormatMAC(mac))
		if err != nil {
			t.Fatalf("round trip %s: %v", mac, err)
		}
		if !bytes.Equal(parsed, mac) {
			t.Errorf("round trip %s -> %s", mac, parsed)
		}
	}
}

func TestParseMACRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"aa:bb:cc:dd:ee",
		"aa:bb:cc:dd:ee:ff:00",
		"aa-bb-cc-dd-ee-ff",
		"gg:bb:cc:dd:ee:ff",
		"aaa:bb:cc:dd:ee:f",
		"a:bb:cc:dd:ee:ff1",
	}
	for _, s := range bad {
		if _, err := ParseMAC(s); !errors.Is(err, ErrInvalidAddressFormat) {
			t.Errorf("ParseMAC(%q) error = %v, want ErrInvalidAddressFormat", s, err)
		}
	}
}

func TestParseIPv4RoundTrip(t *testing.T) {
	ips := []string{"0.0.0.0", "192.168.1.50", "10.0.0.1", "255.255.255.255"}
	for _, s := range ips {
		ip, err := ParseIPv4(s)
		if err != nil {
			t.Fatalf("ParseIPv4(%q): %v", s, err)
		}
		if got := FormatIPv4(ip); got != s {
			t.Errorf("round trip %q -> %q", s, got)
		}
	}
}

func TestParseIPv4RejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"999.999.999.999",
		"1.2.3",
		"1.2.3.4.5",
		"a.b.c.d",
		"192.168.1.",
		"fe80::1",
	}
	for _, s := range bad {
		if _, err := ParseIPv4(s); !errors.Is(err, ErrInvalidAddressFormat) {
			t.Errorf("ParseIPv4(%q) error = %v, want ErrInvalidAddressFormat", s, err)
		}
	}
}

func TestIsZeroMAC(t *testing.T) {
	if !IsZeroMAC(nil) || !IsZeroMAC(ZeroMAC) {
		t.Error("zero sentinel not recognized")
	}
	if IsZeroMAC(net.HardwareAddr{0x00, 0x00, 0x00, 0x00, 0x00, 0x01}) {
		t.Error("non-zero mac reported as zero")
	}
}
