package records

import (
	"fmt"

	"github.com/thenaterhood/stubdns/wire"
)

// SOA marks the start of a zone of authority (RFC 1035 3.3.13).
type SOA struct {
	MName   string
	RName   string
	Serial  uint32
	Refresh uint32
	Retry   uint32
	Expire  uint32
	Minimum uint32
}

func (rd *SOA) String() string {
	return fmt.Sprintf("%s %s %d %d %d %d %d",
		rd.MName, rd.RName, rd.Serial, rd.Refresh, rd.Retry, rd.Expire, rd.Minimum)
}

func decodeSOA(r *wire.Reader, _ uint16) (RData, error) {
	mname, err := r.ReadName()
	if err != nil {
		return nil, err
	}
	rname, err := r.ReadName()
	if err != nil {
		return nil, err
	}
	return &SOA{
		MName:   mname,
		RName:   rname,
		Serial:  r.ReadUint32(),
		Refresh: r.ReadUint32(),
		Retry:   r.ReadUint32(),
		Expire:  r.ReadUint32(),
		Minimum: r.ReadUint32(),
	}, nil
}

// MX names a mail exchanger with a preference (RFC 1035 3.3.9).
type MX struct {
	Preference uint16
	Exchange   string
}

func (rd *MX) String() string {
	return fmt.Sprintf("%d %s", rd.Preference, rd.Exchange)
}

func decodeMX(r *wire.Reader, _ uint16) (RData, error) {
	pref := r.ReadUint16()
	exchange, err := r.ReadName()
	if err != nil {
		return nil, err
	}
	return &MX{Preference: pref, Exchange: exchange}, nil
}

// AFSDB locates an AFS database server (RFC 1183 1).
type AFSDB struct {
	Subtype  uint16
	Hostname string
}

func (rd *AFSDB) String() string {
	return fmt.Sprintf("%d %s", rd.Subtype, rd.Hostname)
}

func decodeAFSDB(r *wire.Reader, _ uint16) (RData, error) {
	sub := r.ReadUint16()
	host, err := r.ReadName()
	if err != nil {
		return nil, err
	}
	return &AFSDB{Subtype: sub, Hostname: host}, nil
}

// RT names a route-through intermediate host (RFC 1183 3.3).
type RT struct {
	Preference       uint16
	IntermediateHost string
}

func (rd *RT) String() string {
	return fmt.Sprintf("%d %s", rd.Preference, rd.IntermediateHost)
}

func decodeRT(r *wire.Reader, _ uint16) (RData, error) {
	pref := r.ReadUint16()
	host, err := r.ReadName()
	if err != nil {
		return nil, err
	}
	return &RT{Preference: pref, IntermediateHost: host}, nil
}

// KX names a key exchanger (RFC 2230).
type KX struct {
	Preference uint16
	Exchanger  string
}

func (rd *KX) String() string {
	return fmt.Sprintf("%d %s", rd.Preference, rd.Exchanger)
}

func decodeKX(r *wire.Reader, _ uint16) (RData, error) {
	pref := r.ReadUint16()
	exchanger, err := r.ReadName()
	if err != nil {
		return nil, err
	}
	return &KX{Preference: pref, Exchanger: exchanger}, nil
}

// PX maps RFC 822 addresses to X.400 (RFC 2163).
type PX struct {
	Preference uint16
	Map822     string
	MapX400    string
}

func (rd *PX) String() string {
	return fmt.Sprintf("%d %s %s", rd.Preference, rd.Map822, rd.MapX400)
}

func decodePX(r *wire.Reader, _ uint16) (RData, error) {
	pref := r.ReadUint16()
	map822, err := r.ReadName()
	if err != nil {
		return nil, err
	}
	mapX400, err := r.ReadName()
	if err != nil {
		return nil, err
	}
	return &PX{Preference: pref, Map822: map822, MapX400: mapX400}, nil
}

// MINFO names the mailboxes responsible for a mailing list (RFC 1035
// 3.3.7).
type MINFO struct {
	RMailbox string
	EMailbox string
}

func (rd *MINFO) String() string {
	return fmt.Sprintf("%s %s", rd.RMailbox, rd.EMailbox)
}

func decodeMINFO(r *wire.Reader, _ uint16) (RData, error) {
	rmail, err := r.ReadName()
	if err != nil {
		return nil, err
	}
	email, err := r.ReadName()
	if err != nil {
		return nil, err
	}
	return &MINFO{RMailbox: rmail, EMailbox: email}, nil
}

// RP names a responsible person and a pointer to TXT data (RFC 1183
// 2.2).
type RP struct {
	Mailbox string
	TxtName string
}

func (rd *RP) String() string {
	return fmt.Sprintf("%s %s", rd.Mailbox, rd.TxtName)
}

func decodeRP(r *wire.Reader, _ uint16) (RData, error) {
	mbox, err := r.ReadName()
	if err != nil {
		return nil, err
	}
	txt, err := r.ReadName()
	if err != nil {
		return nil, err
	}
	return &RP{Mailbox: mbox, TxtName: txt}, nil
}
