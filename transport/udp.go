package transport

import (
	"net"
	"time"

	"github.com/thenaterhood/stubdns/models"
)

type udpTransport struct {
	config Config
}

func (t *udpTransport) Exchange(req *models.Request, servers []string) *models.Response {
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

// exchangeOne performs a single datagram round trip. nil means the
// caller should move on to the next server.
func (t *udpTransport) exchangeOne(req *models.Request, packed []byte, server string) *models.Response {
	conn, err := net.DialTimeout("udp", server, t.config.timeout())
	if err != nil {
		t.config.fail(server, err)
		return nil
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(t.config.timeout()))

	if _, err := conn.Write(packed); err != nil {
		t.config.fail(server, err)
		return nil
	}

	buf := make([]byte, MaxUDPSize)
	n, err := conn.Read(buf)
	if err != nil {
		t.config.fail(server, err)
		return nil
	}

	resp := models.ParseResponse(buf[:n], server, time.Now())
	if err := checkId(req, resp); err != nil {
		t.config.fail(server, err)
		return nil
	}
	if resp.Error != "" {
		t.config.Metrics.IncMalformedResponses()
	}
	return resp
}
