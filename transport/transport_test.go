package transport

import (
	"io"
	"net"
	"sync/atomic"
	"testing"

	"github.com/miekg/dns"
	"github.com/thenaterhood/stubdns/models"
	"github.com/thenaterhood/stubdns/records"
)

// serveUDP runs a loopback nameserver that answers each datagram with
// handler's reply, or stays silent when handler returns nil.
func serveUDP(t *testing.T, handler func(req *dns.Msg) *dns.Msg) (string, func()) {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	go func() {
		buf := make([]byte, MaxUDPSize)
		for {
			n, client, err := pc.ReadFrom(buf)
			if err != nil {
				return
			}
			req := new(dns.Msg)
			if req.Unpack(buf[:n]) != nil {
				continue
			}
			reply := handler(req)
			if reply == nil {
				continue
			}
			out, err := reply.Pack()
			if err != nil {
				continue
			}
			pc.WriteTo(out, client)
		}
	}()

	return pc.LocalAddr().String(), func() { pc.Close() }
}

// serveTCPOnce runs a loopback nameserver that accepts one connection,
// reads one framed request and writes back handler's framed replies in
// order.
func serveTCPOnce(t *testing.T, handler func(req *dns.Msg) []*dns.Msg) (string, func()) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		var prefix [2]byte
		if _, err := io.ReadFull(conn, prefix[:]); err != nil {
			return
		}
		reqBuf := make([]byte, int(prefix[0])<<8|int(prefix[1]))
		if _, err := io.ReadFull(conn, reqBuf); err != nil {
			return
		}
		req := new(dns.Msg)
		if req.Unpack(reqBuf) != nil {
			return
		}

		for _, reply := range handler(req) {
			out, err := reply.Pack()
			if err != nil {
				return
			}
			frame := append([]byte{byte(len(out) >> 8), byte(len(out))}, out...)
			if _, err := conn.Write(frame); err != nil {
				return
			}
		}
	}()

	return ln.Addr().String(), func() { ln.Close() }
}

func aRequest(id uint16) *models.Request {
	req := models.NewRequest(id, true)
	req.AddQuestion(models.Question{Name: "example.com.", Type: records.TypeA})
	return req
}

func answered(req *dns.Msg) *dns.Msg {
	reply := new(dns.Msg)
	reply.SetReply(req)
	reply.Answer = append(reply.Answer, &dns.A{
		Hdr: dns.RR_Header{Name: req.Question[0].Name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 60},
		A:   net.IPv4(192, 0, 2, 1).To4(),
	})
	return reply
}

func TestUDPExchange(t *testing.T) {
	addr, stop := serveUDP(t, answered)
	defer stop()

	tr := New(UDP, Config{Timeout: 2, Retries: 1})
	resp := tr.Exchange(aRequest(99), []string{addr})

	if resp.Error != "" {
		t.Fatalf("exchange failed: %s", resp.Error)
	}
	if resp.Header.Id != 99 {
		t.Errorf("reply id %d, expected 99", resp.Header.Id)
	}
	if len(resp.Answers) != 1 {
		t.Fatalf("decoded %d answers", len(resp.Answers))
	}
	if resp.Server != addr {
		t.Errorf("reply attributed to %q, expected %q", resp.Server, addr)
	}
}

func TestUDPRetryAccounting(t *testing.T) {
	var attempts atomic.Int32
	addr, stop := serveUDP(t, func(req *dns.Msg) *dns.Msg {
		attempts.Add(1)
		return nil
	})
	defer stop()

	tr := New(UDP, Config{Timeout: 1, Retries: 3})
	resp := tr.Exchange(aRequest(1), []string{addr})

	if resp.Error != TimeoutError {
		t.Errorf("error %q, expected %q", resp.Error, TimeoutError)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("server saw %d attempts, expected retries * servers = 3", got)
	}
}

func TestUDPFailover(t *testing.T) {
	dead, stopDead := serveUDP(t, func(req *dns.Msg) *dns.Msg { return nil })
	defer stopDead()
	live, stopLive := serveUDP(t, answered)
	defer stopLive()

	tr := New(UDP, Config{Timeout: 1, Retries: 1})
	resp := tr.Exchange(aRequest(5), []string{dead, live})

	if resp.Error != "" {
		t.Fatalf("failover did not reach second server: %s", resp.Error)
	}
	if resp.Server != live {
		t.Errorf("answer attributed to %q, expected %q", resp.Server, live)
	}
}

func TestUDPRejectsMismatchedId(t *testing.T) {
	var events []string
	addr, stop := serveUDP(t, func(req *dns.Msg) *dns.Msg {
		reply := answered(req)
		reply.Id = req.Id + 1
		return reply
	})
	defer stop()

	tr := New(UDP, Config{
		Timeout: 1,
		Retries: 1,
		Verbose: func(msg string) { events = append(events, msg) },
	})
	resp := tr.Exchange(aRequest(40), []string{addr})

	if resp.Error != TimeoutError {
		t.Errorf("spoofed reply was accepted: %+v", resp.Header)
	}
	if len(events) == 0 {
		t.Error("no verbose event for the rejected reply")
	}
}

func TestTCPExchange(t *testing.T) {
	addr, stop := serveTCPOnce(t, func(req *dns.Msg) []*dns.Msg {
		return []*dns.Msg{answered(req)}
	})
	defer stop()

	tr := New(TCP, Config{Timeout: 2, Retries: 1})
	resp := tr.Exchange(aRequest(77), []string{addr})

	if resp.Error != "" {
		t.Fatalf("exchange failed: %s", resp.Error)
	}
	if len(resp.Answers) != 1 || resp.Header.Id != 77 {
		t.Errorf("reply decoded as %+v", resp.Header)
	}
}

func TestTCPConnectionRefused(t *testing.T) {
	// Bind and immediately close to get a dead port.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	tr := New(TCP, Config{Timeout: 1, Retries: 2})
	resp := tr.Exchange(aRequest(1), []string{addr})

	if resp.Error != TimeoutError {
		t.Errorf("error %q, expected %q", resp.Error, TimeoutError)
	}
}

func soaRR(name string) *dns.SOA {
	return &dns.SOA{
		Hdr:     dns.RR_Header{Name: name, Rrtype: dns.TypeSOA, Class: dns.ClassINET, Ttl: 3600},
		Ns:      "ns1." + name,
		Mbox:    "hostmaster." + name,
		Serial:  1,
		Refresh: 7200,
		Retry:   3600,
		Expire:  1209600,
		Minttl:  300,
	}
}

func hostRR(name string, last byte) *dns.A {
	return &dns.A{
		Hdr: dns.RR_Header{Name: name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 60},
		A:   net.IPv4(192, 0, 2, last).To4(),
	}
}

func TestTCPZoneTransfer(t *testing.T) {
	const zone = "example.com."

	addr, stop := serveTCPOnce(t, func(req *dns.Msg) []*dns.Msg {
		first := new(dns.Msg)
		first.SetReply(req)
		first.Answer = []dns.RR{soaRR(zone), hostRR("a."+zone, 1)}

		middle := new(dns.Msg)
		middle.SetReply(req)
		middle.Answer = []dns.RR{hostRR("b."+zone, 2), hostRR("c."+zone, 3)}

		last := new(dns.Msg)
		last.SetReply(req)
		last.Answer = []dns.RR{hostRR("d."+zone, 4), soaRR(zone)}

		return []*dns.Msg{first, middle, last}
	})
	defer stop()

	req := models.NewRequest(123, false)
	req.AddQuestion(models.Question{Name: zone, Type: records.TypeAXFR})

	tr := New(TCP, Config{Timeout: 2, Retries: 1})
	resp := tr.Exchange(req, []string{addr})

	if resp.Error != "" {
		t.Fatalf("transfer failed: %s", resp.Error)
	}
	if len(resp.Answers) != 6 {
		t.Fatalf("aggregate holds %d answers, expected 6", len(resp.Answers))
	}
	if int(resp.Header.ANCount) != len(resp.Answers) {
		t.Errorf("ancount %d does not match %d aggregated answers",
			resp.Header.ANCount, len(resp.Answers))
	}
	if resp.Answers[0].Type != records.TypeSOA || resp.Answers[5].Type != records.TypeSOA {
		t.Errorf("aggregate is not SOA-bracketed: first %s last %s",
			resp.Answers[0].Type, resp.Answers[5].Type)
	}
}
