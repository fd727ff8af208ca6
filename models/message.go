// Package models defines the DNS message structures exchanged between
// the transport and the query engine: the header, questions, resource
// records, outbound requests and decoded responses.
package models

import (
	"fmt"

	"github.com/thenaterhood/stubdns/records"
	"github.com/thenaterhood/stubdns/wire"
)

// Opcode is the 4-bit header operation code.
type Opcode uint8

const (
	OpcodeQuery  Opcode = 0
	OpcodeIQuery Opcode = 1
	OpcodeStatus Opcode = 2
	OpcodeNotify Opcode = 4
	OpcodeUpdate Opcode = 5
)

// RCode is the 4-bit header response code.
type RCode uint8

const (
	RCodeNoError  RCode = 0
	RCodeFormErr  RCode = 1
	RCodeServFail RCode = 2
	RCodeNXDomain RCode = 3
	RCodeNotImp   RCode = 4
	RCodeRefused  RCode = 5
	RCodeYXDomain RCode = 6
	RCodeYXRRSet  RCode = 7
	RCodeNXRRSet  RCode = 8
	RCodeNotAuth  RCode = 9
	RCodeNotZone  RCode = 10
)

func (rc RCode) String() string {
	switch rc {
	case RCodeNoError:
		return "NOERROR"
	case RCodeFormErr:
		return "FORMERR"
	case RCodeServFail:
		return "SERVFAIL"
	case RCodeNXDomain:
		return "NXDOMAIN"
	case RCodeNotImp:
		return "NOTIMP"
	case RCodeRefused:
		return "REFUSED"
	case RCodeYXDomain:
		return "YXDOMAIN"
	case RCodeYXRRSet:
		return "YXRRSET"
	case RCodeNXRRSet:
		return "NXRRSET"
	case RCodeNotAuth:
		return "NOTAUTH"
	case RCodeNotZone:
		return "NOTZONE"
	}
	return fmt.Sprintf("RCODE%d", uint8(rc))
}

// Header is the fixed 12-octet message header.
type Header struct {
	Id     uint16
	QR     bool
	Opcode Opcode
	AA     bool
	TC     bool
	RD     bool
	RA     bool
	Z      uint8
	RCode  RCode

	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16
}

// Flags packs the second header word.
func (h *Header) Flags() uint16 {
	var f uint16
	if h.QR {
		f |= 1 << 15
	}
	f |= uint16(h.Opcode&0x0f) << 11
	if h.AA {
		f |= 1 << 10
	}
	if h.TC {
		f |= 1 << 9
	}
	if h.RD {
		f |= 1 << 8
	}
	if h.RA {
		f |= 1 << 7
	}
	f |= uint16(h.Z&0x07) << 4
	f |= uint16(h.RCode & 0x0f)
	return f
}

// SetFlags unpacks the second header word.
func (h *Header) SetFlags(f uint16) {
	h.QR = f&(1<<15) != 0
	h.Opcode = Opcode(f >> 11 & 0x0f)
	h.AA = f&(1<<10) != 0
	h.TC = f&(1<<9) != 0
	h.RD = f&(1<<8) != 0
	h.RA = f&(1<<7) != 0
	h.Z = uint8(f >> 4 & 0x07)
	h.RCode = RCode(f & 0x0f)
}

func (h *Header) pack(b []byte) []byte {
	b = wire.AppendUint16(b, h.Id)
	b = wire.AppendUint16(b, h.Flags())
	b = wire.AppendUint16(b, h.QDCount)
	b = wire.AppendUint16(b, h.ANCount)
	b = wire.AppendUint16(b, h.NSCount)
	return wire.AppendUint16(b, h.ARCount)
}

func readHeader(r *wire.Reader) Header {
	var h Header
	h.Id = r.ReadUint16()
	h.SetFlags(r.ReadUint16())
	h.QDCount = r.ReadUint16()
	h.ANCount = r.ReadUint16()
	h.NSCount = r.ReadUint16()
	h.ARCount = r.ReadUint16()
	return h
}

// Question is a single query tuple.
type Question struct {
	Name  string
	Type  records.Type
	Class records.Class
}

func (q Question) String() string {
	return fmt.Sprintf("%-32s %s\t%s", q.Name, q.Class, q.Type)
}

// CacheKey serializes the question into the canonical cache key. Name
// comparison is case-insensitive, so the name is folded.
func (q Question) CacheKey() string {
	return fmt.Sprintf("%d:%d:%s", uint16(q.Class), uint16(q.Type), foldName(q.Name))
}

func foldName(name string) string {
	b := []byte(name)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

func readQuestion(r *wire.Reader) (Question, error) {
	name, err := r.ReadName()
	if err != nil {
		return Question{}, err
	}
	return Question{
		Name:  name,
		Type:  records.Type(r.ReadUint16()),
		Class: records.Class(r.ReadUint16()),
	}, nil
}

// ResourceRecord is one decoded entry of an answer, authority or
// additional section.
type ResourceRecord struct {
	Name     string
	Type     records.Type
	Class    records.Class
	TTL      uint32
	RDLength uint16
	Data     records.RData
}

func (rr ResourceRecord) String() string {
	return fmt.Sprintf("%-32s %d\t%s\t%s\t%s", rr.Name, rr.TTL, rr.Class, rr.Type, rr.Data)
}

// readResourceRecord decodes one RR and verifies the variant consumed
// exactly rdlength octets.
func readResourceRecord(r *wire.Reader) (ResourceRecord, error) {
	name, err := r.ReadName()
	if err != nil {
		return ResourceRecord{}, err
	}
	rr := ResourceRecord{
		Name:  name,
		Type:  records.Type(r.ReadUint16()),
		Class: records.Class(r.ReadUint16()),
		TTL:   r.ReadUint32(),
	}
	rr.RDLength = r.ReadUint16()
	start := r.Pos()
	rr.Data, err = records.Decode(rr.Type, r, rr.RDLength)
	if err != nil {
		return ResourceRecord{}, err
	}
	if r.Pos() != start+int(rr.RDLength) {
		return ResourceRecord{}, fmt.Errorf("%w: %s rdata length mismatch (declared %d, consumed %d)",
			wire.ErrFormat, rr.Type, rr.RDLength, r.Pos()-start)
	}
	return rr, nil
}
