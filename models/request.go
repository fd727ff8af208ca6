package models

import (
	"github.com/thenaterhood/stubdns/records"
	"github.com/thenaterhood/stubdns/wire"
)

// Request is an outbound query message.
type Request struct {
	Header    Header
	Questions []Question
}

// NewRequest builds a query request with the given transaction id and
// recursion-desired flag. Questions are added with AddQuestion.
func NewRequest(id uint16, recursion bool) *Request {
	return &Request{
		Header: Header{
			Id:     id,
			Opcode: OpcodeQuery,
			RD:     recursion,
		},
	}
}

// AddQuestion appends a question. An unset class defaults to IN.
func (req *Request) AddQuestion(q Question) {
	if q.Class == 0 {
		q.Class = records.ClassIN
	}
	req.Questions = append(req.Questions, q)
}

// Pack serializes the request. Question names are emitted without
// compression. Section counts are recomputed from the question list.
func (req *Request) Pack() ([]byte, error) {
	h := req.Header
	h.QR = false
	h.QDCount = uint16(len(req.Questions))
	h.ANCount = 0
	h.NSCount = 0
	h.ARCount = 0

	b := h.pack(make([]byte, 0, 12+32*len(req.Questions)))
	for _, q := range req.Questions {
		var err error
		b, err = wire.AppendName(b, q.Name)
		if err != nil {
			return nil, err
		}
		b = wire.AppendUint16(b, uint16(q.Type))
		b = wire.AppendUint16(b, uint16(q.Class))
	}
	return b, nil
}
