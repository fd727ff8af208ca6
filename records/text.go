package records

import (
	"fmt"
	"strings"

	"github.com/thenaterhood/stubdns/wire"
)

// TXT holds descriptive text as one or more character strings (RFC
// 1035 3.3.14). String concatenates the segments without separators,
// which is how multi-segment records such as long SPF policies are
// meant to be read.
type TXT struct {
	Text []string
}

func (rd *TXT) String() string {
	return strings.Join(rd.Text, "")
}

func decodeTXT(r *wire.Reader, rdlength uint16) (RData, error) {
	return &TXT{Text: readCharStrings(r, rdlength)}, nil
}

// SPF is the (historic) sender policy record, wire-identical to TXT
// (RFC 4408).
type SPF struct {
	Text []string
}

func (rd *SPF) String() string {
	return strings.Join(rd.Text, "")
}

func decodeSPF(r *wire.Reader, rdlength uint16) (RData, error) {
	return &SPF{Text: readCharStrings(r, rdlength)}, nil
}

// readCharStrings consumes character strings until rdlength octets have
// been read.
func readCharStrings(r *wire.Reader, rdlength uint16) []string {
	var out []string
	end := r.Pos() + int(rdlength)
	for r.Pos() < end {
		out = append(out, r.ReadCharString())
	}
	return out
}

// HINFO describes host CPU and OS (RFC 1035 3.3.2).
type HINFO struct {
	CPU string
	OS  string
}

func (rd *HINFO) String() string {
	return fmt.Sprintf("%s %s", rd.CPU, rd.OS)
}

func decodeHINFO(r *wire.Reader, _ uint16) (RData, error) {
	return &HINFO{CPU: r.ReadCharString(), OS: r.ReadCharString()}, nil
}

// X25 holds a PSDN address (RFC 1183 3.1).
type X25 struct {
	PSDNAddress string
}

func (rd *X25) String() string {
	return rd.PSDNAddress
}

func decodeX25(r *wire.Reader, _ uint16) (RData, error) {
	return &X25{PSDNAddress: r.ReadCharString()}, nil
}

// ISDN holds an ISDN address and optional subaddress (RFC 1183 3.2).
type ISDN struct {
	Address    string
	SubAddress string
}

func (rd *ISDN) String() string {
	if rd.SubAddress == "" {
		return rd.Address
	}
	return fmt.Sprintf("%s %s", rd.Address, rd.SubAddress)
}

func decodeISDN(r *wire.Reader, rdlength uint16) (RData, error) {
	end := r.Pos() + int(rdlength)
	isdn := &ISDN{Address: r.ReadCharString()}
	if r.Pos() < end {
		isdn.SubAddress = r.ReadCharString()
	}
	return isdn, nil
}

// NAPTR is the naming authority pointer used by ENUM and SIP (RFC
// 3403).
type NAPTR struct {
	Order       uint16
	Preference  uint16
	Flags       string
	Services    string
	Regexp      string
	Replacement string
}

func (rd *NAPTR) String() string {
	return fmt.Sprintf("%d %d \"%s\" \"%s\" \"%s\" %s",
		rd.Order, rd.Preference, rd.Flags, rd.Services, rd.Regexp, rd.Replacement)
}

func decodeNAPTR(r *wire.Reader, _ uint16) (RData, error) {
	naptr := &NAPTR{
		Order:      r.ReadUint16(),
		Preference: r.ReadUint16(),
		Flags:      r.ReadCharString(),
		Services:   r.ReadCharString(),
		Regexp:     r.ReadCharString(),
	}
	replacement, err := r.ReadName()
	if err != nil {
		return nil, err
	}
	naptr.Replacement = replacement
	return naptr, nil
}

// SRV locates a service endpoint (RFC 2782).
type SRV struct {
	Priority uint16
	Weight   uint16
	Port     uint16
	Target   string
}

func (rd *SRV) String() string {
	return fmt.Sprintf("%d %d %d %s", rd.Priority, rd.Weight, rd.Port, rd.Target)
}

func decodeSRV(r *wire.Reader, _ uint16) (RData, error) {
	srv := &SRV{
		Priority: r.ReadUint16(),
		Weight:   r.ReadUint16(),
		Port:     r.ReadUint16(),
	}
	target, err := r.ReadName()
	if err != nil {
		return nil, err
	}
	srv.Target = target
	return srv, nil
}
