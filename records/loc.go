package records

import (
	"fmt"

	"github.com/thenaterhood/stubdns/wire"
)

// LOC expresses geographic location (RFC 1876). Latitude and longitude
// are thousandths of an arc second offset from 2^31 at the
// equator/prime meridian; altitude is centimeters above a datum 100km
// below sea level. Size and the precision fields pack a one-digit base
// and a decimal exponent into one octet each.
type LOC struct {
	Version   uint8
	Size      uint8
	HorizPre  uint8
	VertPre   uint8
	Latitude  uint32
	Longitude uint32
	Altitude  uint32
}

const locEquator = uint32(1) << 31

func decodeLOC(r *wire.Reader, _ uint16) (RData, error) {
	loc := &LOC{
		Version:   r.ReadUint8(),
		Size:      r.ReadUint8(),
		HorizPre:  r.ReadUint8(),
		VertPre:   r.ReadUint8(),
		Latitude:  r.ReadUint32(),
		Longitude: r.ReadUint32(),
		Altitude:  r.ReadUint32(),
	}
	if loc.Version != 0 {
		return nil, fmt.Errorf("%w: unknown LOC version %d", wire.ErrFormat, loc.Version)
	}
	return loc, nil
}

func (rd *LOC) String() string {
	return fmt.Sprintf("%s %s %sm %s %s %s",
		locDegrees(rd.Latitude, "N", "S"),
		locDegrees(rd.Longitude, "E", "W"),
		locAltitude(rd.Altitude),
		locSize(rd.Size),
		locPrecision(rd.HorizPre),
		locPrecision(rd.VertPre))
}

// locDegrees renders thousandths of arc seconds as degrees, minutes,
// seconds and a hemisphere letter.
func locDegrees(raw uint32, pos, neg string) string {
	hemi := pos
	var v uint32
	if raw >= locEquator {
		v = raw - locEquator
	} else {
		v = locEquator - raw
		hemi = neg
	}
	ms := v % 1000
	v /= 1000
	sec := v % 60
	v /= 60
	min := v % 60
	deg := v / 60
	return fmt.Sprintf("%d %d %d.%03d %s", deg, min, sec, ms, hemi)
}

func locAltitude(raw uint32) string {
	return fmt.Sprintf("%.2f", float64(raw)/100-100000)
}

// locSize renders the size field the way the presentation format
// historically shipped: the raw base*10^exponent centimeter count with
// a meter suffix.
func locSize(b uint8) string {
	v := uint64(b >> 4)
	for i := uint8(0); i < b&0x0f; i++ {
		v *= 10
	}
	return fmt.Sprintf("%dm", v)
}

// locPrecision renders a precision field converted from centimeters to
// whole meters.
func locPrecision(b uint8) string {
	v := uint64(b >> 4)
	for i := uint8(0); i < b&0x0f; i++ {
		v *= 10
	}
	return fmt.Sprintf("%dm", v/100)
}
