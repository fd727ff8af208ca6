package records

import (
	"fmt"

	"github.com/thenaterhood/stubdns/wire"
)

// RData is the decoded, type-specific payload of a resource record.
// String returns the canonical presentation-format rendering.
type RData interface {
	String() string
}

type decoder func(r *wire.Reader, rdlength uint16) (RData, error)

// decoders is the closed type dispatch table. Types absent from the
// table carry their RDATA as opaque bytes.
var decoders = map[Type]decoder{
	TypeA:     decodeA,
	TypeAAAA:  decodeAAAA,
	TypeNS:    nameDecoder(func(n string) RData { return &NS{Host: n} }),
	TypeCNAME: nameDecoder(func(n string) RData { return &CNAME{Target: n} }),
	TypePTR:   nameDecoder(func(n string) RData { return &PTR{Ptr: n} }),
	TypeMB:    nameDecoder(func(n string) RData { return &MB{Mailbox: n} }),
	TypeMD:    nameDecoder(func(n string) RData { return &MD{Host: n} }),
	TypeMF:    nameDecoder(func(n string) RData { return &MF{Host: n} }),
	TypeMG:    nameDecoder(func(n string) RData { return &MG{Mailbox: n} }),
	TypeMR:    nameDecoder(func(n string) RData { return &MR{NewName: n} }),
	TypeDNAME: nameDecoder(func(n string) RData { return &DNAME{Target: n} }),
	TypeSOA:   decodeSOA,
	TypeWKS:   decodeWKS,
	TypeHINFO: decodeHINFO,
	TypeX25:   decodeX25,
	TypeISDN:  decodeISDN,
	TypeMINFO: decodeMINFO,
	TypeRP:    decodeRP,
	TypeMX:    decodeMX,
	TypeAFSDB: decodeAFSDB,
	TypeRT:    decodeRT,
	TypeKX:    decodeKX,
	TypePX:    decodePX,
	TypeTXT:   decodeTXT,
	TypeSPF:   decodeSPF,
	TypeSRV:   decodeSRV,
	TypeNAPTR: decodeNAPTR,
	TypeLOC:   decodeLOC,
	TypeSIG:   decodeSIG,
	TypeRRSIG: decodeRRSIG,
}

// Decode reads the RDATA variant for t from r. Fixed-layout variants
// read their own layout whatever rdlength says, so the number of octets
// consumed can differ from rdlength; the caller checks it.
func Decode(t Type, r *wire.Reader, rdlength uint16) (RData, error) {
	if dec, ok := decoders[t]; ok {
		return dec(r, rdlength)
	}
	return decodeOpaque(t, r, rdlength)
}

// nameDecoder builds a decoder for the single-domain-name RDATA layout
// shared by NS, CNAME, PTR and friends.
func nameDecoder(wrap func(name string) RData) decoder {
	return func(r *wire.Reader, _ uint16) (RData, error) {
		name, err := r.ReadName()
		if err != nil {
			return nil, err
		}
		return wrap(name), nil
	}
}

// Opaque carries RDATA that is preserved verbatim, either because the
// type code is unknown or because the type is surfaced without field
// level parsing (DNSKEY, DS, NSEC, OPT, TSIG, ...).
type Opaque struct {
	Type Type
	Data []byte
}

// String renders in the RFC 3597 unknown-type presentation format.
func (rd *Opaque) String() string {
	return fmt.Sprintf("\\# %d %x", len(rd.Data), rd.Data)
}

func decodeOpaque(t Type, r *wire.Reader, rdlength uint16) (RData, error) {
	return &Opaque{Type: t, Data: r.ReadBytes(int(rdlength))}, nil
}
