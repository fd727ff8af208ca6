package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/thenaterhood/stubdns/wire"
)

// Response is a decoded reply, or a synthesized report of a transport
// failure. Error is empty iff the bytes parsed cleanly; a response with
// Error set carries no sections.
type Response struct {
	Header      Header
	Questions   []Question
	Answers     []ResourceRecord
	Authorities []ResourceRecord
	Additionals []ResourceRecord

	// Server is the endpoint that produced the reply, as host:port.
	Server string
	// Captured is when the reply was read off the wire; cache TTL
	// aging is measured from it.
	Captured time.Time
	// Size is the total number of message octets read.
	Size int
	// Raw is the undecoded message. Aggregated zone transfer
	// responses, which are assembled rather than read in one piece,
	// leave it nil.
	Raw []byte
	// Error reports a transport or format failure.
	Error string
}

// ErrorResponse synthesizes a response reporting a failure such as a
// transport timeout.
func ErrorResponse(msg, server string) *Response {
	return &Response{
		Server:   server,
		Captured: time.Now(),
		Error:    msg,
	}
}

// ParseResponse decodes a reply read from server at the given capture
// time. Malformed input yields a response with Error set and empty
// sections rather than a Go error, per the engine's no-exceptions
// reporting contract.
func ParseResponse(data []byte, server string, captured time.Time) *Response {
	resp, err := parse(data)
	if err != nil {
		return &Response{
			Server:   server,
			Captured: captured,
			Size:     len(data),
			Error:    err.Error(),
		}
	}
	resp.Server = server
	resp.Captured = captured
	resp.Size = len(data)
	resp.Raw = data
	return resp
}

func parse(data []byte) (*Response, error) {
	r := wire.NewReader(data)
	resp := &Response{Header: readHeader(r)}

	for i := uint16(0); i < resp.Header.QDCount; i++ {
		q, err := readQuestion(r)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		resp.Questions = append(resp.Questions, q)
	}
	var err error
	if resp.Answers, err = readSection(r, resp.Header.ANCount, "answer"); err != nil {
		return nil, err
	}
	if resp.Authorities, err = readSection(r, resp.Header.NSCount, "authority"); err != nil {
		return nil, err
	}
	if resp.Additionals, err = readSection(r, resp.Header.ARCount, "additional"); err != nil {
		return nil, err
	}
	return resp, nil
}

func readSection(r *wire.Reader, count uint16, section string) ([]ResourceRecord, error) {
	var out []ResourceRecord
	for i := uint16(0); i < count; i++ {
		rr, err := readResourceRecord(r)
		if err != nil {
			return nil, fmt.Errorf("%s %d: %w", section, i, err)
		}
		out = append(out, rr)
	}
	return out, nil
}

// RecomputeCounts rewrites the header section counts from the actual
// list lengths. Aggregated zone transfer responses call this before
// being handed to the caller.
func (resp *Response) RecomputeCounts() {
	resp.Header.QDCount = uint16(len(resp.Questions))
	resp.Header.ANCount = uint16(len(resp.Answers))
	resp.Header.NSCount = uint16(len(resp.Authorities))
	resp.Header.ARCount = uint16(len(resp.Additionals))
}

// Records returns all resource records across the three sections.
func (resp *Response) Records() []ResourceRecord {
	out := make([]ResourceRecord, 0, len(resp.Answers)+len(resp.Authorities)+len(resp.Additionals))
	out = append(out, resp.Answers...)
	out = append(out, resp.Authorities...)
	return append(out, resp.Additionals...)
}

// IsSuccess reports a parsed reply with a NoError rcode.
func (resp *Response) IsSuccess() bool {
	return resp.Error == "" && resp.Header.RCode == RCodeNoError
}

func (resp *Response) String() string {
	var sb strings.Builder
	if resp.Error != "" {
		fmt.Fprintf(&sb, ";; error: %s (server %s)\n", resp.Error, resp.Server)
		return sb.String()
	}
	h := resp.Header
	fmt.Fprintf(&sb, ";; opcode: %d, status: %s, id: %d\n", h.Opcode, h.RCode, h.Id)
	fmt.Fprintf(&sb, ";; flags:%s; QUERY: %d, ANSWER: %d, AUTHORITY: %d, ADDITIONAL: %d\n",
		flagNames(h), h.QDCount, h.ANCount, h.NSCount, h.ARCount)
	writeSection(&sb, ";; QUESTION SECTION:", len(resp.Questions))
	for _, q := range resp.Questions {
		fmt.Fprintf(&sb, ";%s\n", q)
	}
	writeSection(&sb, ";; ANSWER SECTION:", len(resp.Answers))
	for _, rr := range resp.Answers {
		fmt.Fprintf(&sb, "%s\n", rr)
	}
	writeSection(&sb, ";; AUTHORITY SECTION:", len(resp.Authorities))
	for _, rr := range resp.Authorities {
		fmt.Fprintf(&sb, "%s\n", rr)
	}
	writeSection(&sb, ";; ADDITIONAL SECTION:", len(resp.Additionals))
	for _, rr := range resp.Additionals {
		fmt.Fprintf(&sb, "%s\n", rr)
	}
	fmt.Fprintf(&sb, ";; SERVER: %s\n;; MSG SIZE  rcvd: %d\n", resp.Server, resp.Size)
	return sb.String()
}

func writeSection(sb *strings.Builder, heading string, n int) {
	if n > 0 {
		fmt.Fprintf(sb, "\n%s\n", heading)
	}
}

func flagNames(h Header) string {
	var sb strings.Builder
	if h.QR {
		sb.WriteString(" qr")
	}
	if h.AA {
		sb.WriteString(" aa")
	}
	if h.TC {
		sb.WriteString(" tc")
	}
	if h.RD {
		sb.WriteString(" rd")
	}
	if h.RA {
		sb.WriteString(" ra")
	}
	return sb.String()
}
