// Package arpframe encodes and decodes the fixed 42-byte Ethernet+ARP
// frame used for requests, replies and cache poisoning. All multi-byte
// fields are big-endian on the wire; the functions here are pure and
// bounds-checked.
package arpframe

import (
	"encoding/binary"
	"errors"
	"net"

	errorutil "github.com/projectdiscovery/utils/errors"
)

const (
	// FrameLength is the full Ethernet header + ARP payload size.
	FrameLength = 42

	// EtherTypeARP is the Ethernet frame type for ARP.
	EtherTypeARP = 0x0806

	// HardwareEthernet is the ARP hardware type for Ethernet.
	HardwareEthernet = 1

	// ProtocolIPv4 is the ARP protocol type for IPv4.
	ProtocolIPv4 = 0x0800

	// OperationRequest and OperationReply are the two ARP opcodes used.
	OperationRequest = 1
	OperationReply   = 2

	hardwareAddrLen = 6
	protocolAddrLen = 4
)

// ErrInvalidAddressFormat is returned for malformed MAC or IPv4 strings.
var ErrInvalidAddressFormat = errors.New("invalid address format")

// BroadcastMAC is the all-0xFF Ethernet broadcast address.
var BroadcastMAC = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// ZeroMAC is the all-zero placeholder used for unknown hardware addresses.
var ZeroMAC = net.HardwareAddr{0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

// Frame is the decoded form of a single Ethernet+ARP frame.
type Frame struct {
	DestinationMAC net.HardwareAddr
	SourceMAC      net.HardwareAddr
	EtherType      uint16

	HardwareType uint16
	ProtocolType uint16
	Operation    uint16
	SenderMAC    net.HardwareAddr
	SenderIP     net.IP
	TargetMAC    net.HardwareAddr
	TargetIP     net.IP
}

// EncodeRequest builds a broadcast ARP request asking who owns targetIP.
// The target hardware address is left all-zero as the answer is unknown.
func EncodeRequest(senderMAC net.HardwareAddr, senderIP, targetIP net.IP) ([]byte, error) {
	return encode(OperationRequest, BroadcastMAC, senderMAC, senderIP, ZeroMAC, targetIP)
}

// EncodeReply builds a unicast ARP reply telling targetMAC that senderIP
// is reachable at senderMAC. Sent unsolicited this is the poisoning
// primitive.
func EncodeReply(senderMAC net.HardwareAddr, senderIP net.IP, targetMAC net.HardwareAddr, targetIP net.IP) ([]byte, error) {
	return encode(OperationReply, targetMAC, senderMAC, senderIP, targetMAC, targetIP)
}

func encode(op uint16, destMAC, senderMAC net.HardwareAddr, senderIP net.IP, targetMAC net.HardwareAddr, targetIP net.IP) ([]byte, error) {
	senderIP4, targetIP4 := senderIP.To4(), targetIP.To4()
	if len(destMAC) != hardwareAddrLen || len(senderMAC) != hardwareAddrLen || len(targetMAC) != hardwareAddrLen {
		return nil, ErrInvalidAddressFormat
	}
	if senderIP4 == nil || targetIP4 == nil {
		return nil, ErrInvalidAddressFormat
	}

	frame := make([]byte, FrameLength)

	// Ethernet header
	copy(frame[0:6], destMAC)
	copy(frame[6:12], senderMAC)
	binary.BigEndian.PutUint16(frame[12:14], EtherTypeARP)

	// ARP payload
	binary.BigEndian.PutUint16(frame[14:16], HardwareEthernet)
	binary.BigEndian.PutUint16(frame[16:18], ProtocolIPv4)
	frame[18] = hardwareAddrLen
	frame[19] = protocolAddrLen
	binary.BigEndian.PutUint16(frame[20:22], op)
	copy(frame[22:28], senderMAC)
	copy(frame[28:32], senderIP4)
	copy(frame[32:38], targetMAC)
	copy(frame[38:42], targetIP4)

	return frame, nil
}

// Decode parses a raw frame previously produced by EncodeRequest or
// EncodeReply, or captured off the wire. Frames shorter than FrameLength
// or with a non-ARP ethertype are rejected.
func Decode(raw []byte) (*Frame, error) {
	if len(raw) < FrameLength {
		return nil, errorutil.New("short frame: %d bytes", len(raw))
	}
	etherType := binary.BigEndian.Uint16(raw[12:14])
	if etherType != EtherTypeARP {
		return nil, errorutil.New("unexpected ethertype 0x%04x", etherType)
	}

	f := &Frame{
		DestinationMAC: cloneMAC(raw[0:6]),
		SourceMAC:      cloneMAC(raw[6:12]),
		EtherType:      etherType,
		HardwareType:   binary.BigEndian.Uint16(raw[14:16]),
		ProtocolType:   binary.BigEndian.Uint16(raw[16:18]),
		Operation:      binary.BigEndian.Uint16(raw[20:22]),
		SenderMAC:      cloneMAC(raw[22:28]),
		SenderIP:       cloneIP(raw[28:32]),
		TargetMAC:      cloneMAC(raw[32:38]),
		TargetIP:       cloneIP(raw[38:42]),
	}
	return f, nil
}

func cloneMAC(b []byte) net.HardwareAddr {
	mac := make(net.HardwareAddr, hardwareAddrLen)
	copy(mac, b)
	return mac
}

func cloneIP(b []byte) net.IP {
	ip := make(net.IP, protocolAddrLen)
	copy(ip, b)
	return ip
}
