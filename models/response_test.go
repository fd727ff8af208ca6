package models

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/thenaterhood/stubdns/records"
)

// packReply builds a reply with the reference implementation so our
// decoder is exercised against independently produced bytes, including
// name compression.
func packReply(t *testing.T, msg *dns.Msg) []byte {
	t.Helper()

	data, err := msg.Pack()
	if err != nil {
		t.Fatalf("reference encoder failed: %v", err)
	}
	return data
}

func aReply(id uint16) *dns.Msg {
	msg := new(dns.Msg)
	msg.Id = id
	msg.Response = true
	msg.RecursionDesired = true
	msg.RecursionAvailable = true
	msg.Question = []dns.Question{{Name: "www.example.com.", Qtype: dns.TypeA, Qclass: dns.ClassINET}}
	msg.Answer = append(msg.Answer, &dns.A{
		Hdr: dns.RR_Header{Name: "www.example.com.", Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 300},
		A:   net.IPv4(192, 0, 2, 7).To4(),
	})
	return msg
}

func TestParseResponse(t *testing.T) {
	captured := time.Now()
	data := packReply(t, aReply(0xbeef))

	resp := ParseResponse(data, "192.0.2.53:53", captured)
	if resp.Error != "" {
		t.Fatalf("unexpected parse error: %s", resp.Error)
	}

	if resp.Header.Id != 0xbeef || !resp.Header.QR || !resp.Header.RA {
		t.Errorf("header decoded as %+v", resp.Header)
	}
	if int(resp.Header.QDCount) != len(resp.Questions) {
		t.Errorf("qdcount %d but %d questions", resp.Header.QDCount, len(resp.Questions))
	}
	if int(resp.Header.ANCount) != len(resp.Answers) {
		t.Errorf("ancount %d but %d answers", resp.Header.ANCount, len(resp.Answers))
	}
	if resp.Size != len(data) {
		t.Errorf("size %d, expected %d", resp.Size, len(data))
	}
	if resp.Server != "192.0.2.53:53" || !resp.Captured.Equal(captured) {
		t.Errorf("capture metadata: server %q at %v", resp.Server, resp.Captured)
	}

	if len(resp.Answers) != 1 {
		t.Fatalf("decoded %d answers", len(resp.Answers))
	}
	rr := resp.Answers[0]
	if rr.Name != "www.example.com." || rr.Type != records.TypeA || rr.TTL != 300 {
		t.Errorf("answer decoded as %+v", rr)
	}
	a, ok := rr.Data.(*records.A)
	if !ok {
		t.Fatalf("rdata decoded as %T", rr.Data)
	}
	if a.String() != "192.0.2.7" {
		t.Errorf("address decoded as %s", a)
	}
}

func TestParseResponseSections(t *testing.T) {
	msg := aReply(7)
	msg.Ns = append(msg.Ns, &dns.NS{
		Hdr: dns.RR_Header{Name: "example.com.", Rrtype: dns.TypeNS, Class: dns.ClassINET, Ttl: 86400},
		Ns:  "ns1.example.com.",
	})
	msg.Extra = append(msg.Extra, &dns.A{
		Hdr: dns.RR_Header{Name: "ns1.example.com.", Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 86400},
		A:   net.IPv4(192, 0, 2, 10).To4(),
	})

	resp := ParseResponse(packReply(t, msg), "server", time.Now())
	if resp.Error != "" {
		t.Fatalf("unexpected parse error: %s", resp.Error)
	}

	if len(resp.Authorities) != 1 || len(resp.Additionals) != 1 {
		t.Fatalf("sections decoded as %d/%d", len(resp.Authorities), len(resp.Additionals))
	}
	ns, ok := resp.Authorities[0].Data.(*records.NS)
	if !ok || ns.Host != "ns1.example.com." {
		t.Errorf("authority decoded as %#v", resp.Authorities[0].Data)
	}
	if got := len(resp.Records()); got != 3 {
		t.Errorf("Records() returned %d entries, expected 3", got)
	}
}

func TestParseResponseMalformed(t *testing.T) {
	type test struct {
		name string
		data []byte
	}

	truncatedName := append([]byte{0, 1, 0x80, 0, 0, 1, 0, 0, 0, 0, 0, 0}, 9, 'a', 'b')

	// A valid header claiming one answer whose rdlength overruns
	// the variant decode.
	badRdlength := packReply(t, aReply(9))
	// The A rdata is the final 4 octets; stretch its declared
	// rdlength without adding bytes.
	badRdlength[len(badRdlength)-5] = 9

	tests := []test{
		{name: "question name runs past end", data: truncatedName},
		{name: "rdlength mismatch", data: badRdlength},
	}

	for _, tc := range tests {
		resp := ParseResponse(tc.data, "server", time.Now())
		if resp.Error == "" {
			t.Errorf("%s: expected error, got clean parse", tc.name)
			continue
		}
		if len(resp.Answers) != 0 || len(resp.Questions) != 0 {
			t.Errorf("%s: error response carries sections", tc.name)
		}
	}
}

func TestErrorResponse(t *testing.T) {
	resp := ErrorResponse("Timeout Error", "")

	if resp.Error != "Timeout Error" {
		t.Errorf("error field %q", resp.Error)
	}
	if resp.IsSuccess() {
		t.Error("error response reports success")
	}
	if !strings.Contains(resp.String(), "Timeout Error") {
		t.Errorf("rendering %q omits the error", resp.String())
	}
}

func TestResponseString(t *testing.T) {
	resp := ParseResponse(packReply(t, aReply(3)), "192.0.2.53:53", time.Now())

	out := resp.String()
	for _, want := range []string{"NOERROR", "www.example.com.", "192.0.2.7", "MSG SIZE"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendering missing %q:\n%s", want, out)
		}
	}
}
