package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/thenaterhood/stubdns/models"
	"github.com/thenaterhood/stubdns/records"
	"github.com/thenaterhood/stubdns/wire"
)

type tcpTransport struct {
	config Config
}

func (t *tcpTransport) Exchange(req *models.Request, servers []string) *models.Response {
	packed, err := req.Pack()
	if err != nil {
		return models.ErrorResponse(err.Error(), "")
	}

	for attempt := 0; attempt < t.config.Retries; attempt++ {
		for _, server := range servers {
			if resp := t.exchangeOne(req, packed, server); resp != nil {
				return resp
			}
		}
	}

	t.config.Metrics.IncQueriesTimedOut()
	return models.ErrorResponse(TimeoutError, "")
}

func (t *tcpTransport) exchangeOne(req *models.Request, packed []byte, server string) *models.Response {
	ctx, cancel := context.WithTimeout(context.Background(), t.config.timeout())
	conn, err := t.config.Dialer.DialContext(ctx, "tcp", server)
	cancel()
	if err != nil {
		t.config.fail(server, err)
		return nil
	}
	defer conn.Close()

	if err := writeFrame(conn, packed, t.config.timeout()); err != nil {
		t.config.fail(server, err)
		return nil
	}

	frame, err := readFrame(conn, t.config.timeout())
	if err != nil {
		t.config.fail(server, err)
		return nil
	}

	resp := models.ParseResponse(frame, server, time.Now())
	if err := checkId(req, resp); err != nil {
		t.config.fail(server, err)
		return nil
	}
	if resp.Error != "" {
		t.config.Metrics.IncMalformedResponses()
		return resp
	}

	if isZoneTransfer(req) {
		return t.readTransfer(conn, server, resp)
	}
	return resp
}

func isZoneTransfer(req *models.Request) bool {
	return len(req.Questions) > 0 && req.Questions[0].Type == records.TypeAXFR
}

// readTransfer accumulates the remaining messages of an AXFR stream
// into first. The transfer is complete when the answer sections have
// delivered two SOA records, the opening and closing markers of the
// zone.
func (t *tcpTransport) readTransfer(conn net.Conn, server string, first *models.Response) *models.Response {
	soas := countSOAs(first.Answers)

	for soas < 2 {
		frame, err := readFrame(conn, t.config.timeout())
		if err != nil {
			return models.ErrorResponse(fmt.Sprintf("zone transfer interrupted: %v", err), server)
		}
		chunk := models.ParseResponse(frame, server, time.Now())
		if chunk.Error != "" {
			t.config.Metrics.IncMalformedResponses()
			return chunk
		}
		first.Answers = append(first.Answers, chunk.Answers...)
		first.Authorities = append(first.Authorities, chunk.Authorities...)
		first.Additionals = append(first.Additionals, chunk.Additionals...)
		first.Size += chunk.Size
		soas += countSOAs(chunk.Answers)
	}

	// The aggregate is no longer a single wire message.
	first.Raw = nil
	first.RecomputeCounts()
	return first
}

func countSOAs(rrs []models.ResourceRecord) int {
	n := 0
	for _, rr := range rrs {
		if rr.Type == records.TypeSOA {
			n++
		}
	}
	return n
}

// writeFrame sends one message with the 2-octet length prefix.
func writeFrame(conn net.Conn, msg []byte, timeout time.Duration) error {
	conn.SetWriteDeadline(time.Now().Add(timeout))
	frame := wire.AppendUint16(make([]byte, 0, 2+len(msg)), uint16(len(msg)))
	_, err := conn.Write(append(frame, msg...))
	return err
}

// readFrame receives one length-prefixed message. A zero length marks
// the connection as failed.
func readFrame(conn net.Conn, timeout time.Duration) ([]byte, error) {
	conn.SetReadDeadline(time.Now().Add(timeout))

	var prefix [2]byte
	if _, err := io.ReadFull(conn, prefix[:]); err != nil {
		return nil, err
	}
	length := int(prefix[0])<<8 | int(prefix[1])
	if length <= 0 {
		return nil, fmt.Errorf("invalid frame length %d", length)
	}

	frame := make([]byte, length)
	if _, err := io.ReadFull(conn, frame); err != nil {
		return nil, err
	}
	return frame, nil
}
