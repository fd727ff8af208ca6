package records

import (
	"fmt"
	"net"
	"strings"

	"github.com/thenaterhood/stubdns/wire"
)

// A is an IPv4 host address record (RFC 1035 3.4.1).
type A struct {
	Address net.IP
}

func (rd *A) String() string {
	return rd.Address.String()
}

func decodeA(r *wire.Reader, _ uint16) (RData, error) {
	return &A{Address: net.IP(r.ReadBytes(net.IPv4len))}, nil
}

// AAAA is an IPv6 host address record (RFC 3596).
type AAAA struct {
	Address net.IP
}

func (rd *AAAA) String() string {
	return rd.Address.String()
}

func decodeAAAA(r *wire.Reader, _ uint16) (RData, error) {
	return &AAAA{Address: net.IP(r.ReadBytes(net.IPv6len))}, nil
}

// WKS describes well-known services at an address (RFC 1035 3.4.2).
type WKS struct {
	Address  net.IP
	Protocol uint8
	Bitmap   []byte
}

func (rd *WKS) String() string {
	ports := make([]string, 0, 4)
	for i, b := range rd.Bitmap {
		for bit := 0; bit < 8; bit++ {
			if b&(0x80>>bit) != 0 {
				ports = append(ports, fmt.Sprintf("%d", i*8+bit))
			}
		}
	}
	return fmt.Sprintf("%s %d %s", rd.Address, rd.Protocol, strings.Join(ports, " "))
}

func decodeWKS(r *wire.Reader, rdlength uint16) (RData, error) {
	if rdlength < 5 {
		return nil, fmt.Errorf("%w: WKS rdata shorter than 5 octets", wire.ErrFormat)
	}
	return &WKS{
		Address:  net.IP(r.ReadBytes(net.IPv4len)),
		Protocol: r.ReadUint8(),
		Bitmap:   r.ReadBytes(int(rdlength) - 5),
	}, nil
}
