//go:build windows

package adapter

import (
	"net"
	"unsafe"

	"github.com/projectdiscovery/arpx/pkg/arpframe"
	errorutil "github.com/projectdiscovery/utils/errors"
	"golang.org/x/sys/windows"
)

// enumerateAdapters walks GetAdaptersAddresses, skipping loopback
// adapters only; all others are included regardless of operational
// state. The first IPv4 unicast address wins.
func enumerateAdapters() ([]Record, error) {
	addresses, err := adapterAddresses()
	if err != nil {
		return nil, err
	}

	gateways := defaultGatewaysByIfIndex()

	var records []Record
	for _, aa := range addresses {
		if aa.IfType == windows.IF_TYPE_SOFTWARE_LOOPBACK {
			continue
		}

		record := Record{
			ID:          windows.BytePtrToString(aa.AdapterName),
			DisplayName: windows.UTF16PtrToString(aa.FriendlyName),
			Description: windows.UTF16PtrToString(aa.Description),
			IsUp:        aa.OperStatus == windows.IfOperStatusUp,
			IsWireless:  aa.IfType == windows.IF_TYPE_IEEE80211,
		}

		if aa.PhysicalAddressLength == 6 {
			record.MAC = arpframe.FormatMAC(net.HardwareAddr(aa.PhysicalAddress[:6]))
		} else {
			record.MAC = arpframe.FormatMAC(nil) // all-zero default
		}

		for ua := aa.FirstUnicastAddress; ua != nil; ua = ua.Next {
			ip := ua.Address.IP()
			if ip == nil || ip.To4() == nil {
				continue
			}
			record.IP = ip.To4().String()
			record.SubnetMask = maskString(int(ua.OnLinkPrefixLength))
			break
		}

		if gw, ok := gateways[aa.IfIndex]; ok {
			record.GatewayIP = gw
		}

		records = append(records, record)
	}

	return records, nil
}

// adapterAddresses fetches the raw adapter list, growing the buffer on
// ERROR_BUFFER_OVERFLOW as the API requires.
func adapterAddresses() ([]*windows.IpAdapterAddresses, error) {
	var size uint32 = 15000
	flags := uint32(windows.GAA_FLAG_INCLUDE_PREFIX | windows.GAA_FLAG_INCLUDE_GATEWAYS)
	for i := 0; i < 3; i++ {
		buf := make([]byte, size)
		first := (*windows.IpAdapterAddresses)(unsafe.Pointer(&buf[0]))
		err := windows.GetAdaptersAddresses(windows.AF_UNSPEC, flags, 0, first, &size)
		if err == nil {
			var result []*windows.IpAdapterAddresses
			for aa := first; aa != nil; aa = aa.Next {
				result = append(result, aa)
			}
			return result, nil
		}
		if err != windows.ERROR_BUFFER_OVERFLOW {
			return nil, errorutil.NewWithErr(err).Msgf("GetAdaptersAddresses failed")
		}
	}
	return nil, errorutil.New("GetAdaptersAddresses buffer kept overflowing")
}
