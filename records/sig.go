package records

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/thenaterhood/stubdns/wire"
)

// RRSIG is a DNSSEC signature over an RRset (RFC 4034 3). The
// signature is carried, not verified.
type RRSIG struct {
	TypeCovered Type
	Algorithm   uint8
	Labels      uint8
	OriginalTTL uint32
	Expiration  uint32
	Inception   uint32
	KeyTag      uint16
	SignerName  string
	Signature   []byte
}

func (rd *RRSIG) String() string {
	return fmt.Sprintf("%s %d %d %d %s %s %d %s %s",
		rd.TypeCovered, rd.Algorithm, rd.Labels, rd.OriginalTTL,
		sigTime(rd.Expiration), sigTime(rd.Inception),
		rd.KeyTag, rd.SignerName,
		base64.StdEncoding.EncodeToString(rd.Signature))
}

func decodeRRSIG(r *wire.Reader, rdlength uint16) (RData, error) {
	sig, err := decodeSIGFields(r, rdlength)
	if err != nil {
		return nil, err
	}
	return sig, nil
}

// SIG is the predecessor transaction/RRset signature (RFC 2535),
// wire-identical to RRSIG.
type SIG struct {
	RRSIG
}

func decodeSIG(r *wire.Reader, rdlength uint16) (RData, error) {
	sig, err := decodeSIGFields(r, rdlength)
	if err != nil {
		return nil, err
	}
	return &SIG{RRSIG: *sig}, nil
}

func decodeSIGFields(r *wire.Reader, rdlength uint16) (*RRSIG, error) {
	end := r.Pos() + int(rdlength)
	sig := &RRSIG{
		TypeCovered: Type(r.ReadUint16()),
		Algorithm:   r.ReadUint8(),
		Labels:      r.ReadUint8(),
		OriginalTTL: r.ReadUint32(),
		Expiration:  r.ReadUint32(),
		Inception:   r.ReadUint32(),
		KeyTag:      r.ReadUint16(),
	}
	signer, err := r.ReadName()
	if err != nil {
		return nil, err
	}
	sig.SignerName = signer
	if end < r.Pos() {
		return nil, fmt.Errorf("%w: signature fields exceed rdlength", wire.ErrFormat)
	}
	sig.Signature = r.ReadBytes(end - r.Pos())
	return sig, nil
}

// sigTime renders a signature timestamp in the YYYYMMDDHHmmSS zone
// file convention.
func sigTime(epoch uint32) string {
	return time.Unix(int64(epoch), 0).UTC().Format("20060102150405")
}
