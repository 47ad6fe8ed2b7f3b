package restis

import (
	"context"

	"github.com/aphistic/sweet"
	. "github.com/onsi/gomega"
)

type ScannerSuite struct{}

func scanPages(transport *MockTransport) {
	sendSequence(
		transport,
		respond(200, `{"result":["MTA=",["YQ==","Yg=="]]}`),
		respond(200, `{"result":["MA==",["Yw=="]]}`),
	)
}

func scanAll(cursor uint64) Command {
	return Scan(cursor, ScanOptions{Match: "*"})
}

func (s *ScannerSuite) TestScanKeys(t sweet.T) {
	transport := NewMockTransport()
	scanPages(transport)

	keys, err := ScanKeys(context.Background(), makeClient(transport), scanAll)
	Expect(err).To(BeNil())
	Expect(keys).To(Equal([]string{"a", "b", "c"}))

	Expect(transport.SendFuncCallCount).To(Equal(2))
	Expect(string(transport.SendFuncCallParams[0].Arg1.Body)).To(Equal(`["SCAN","0","MATCH","*"]`))
	Expect(string(transport.SendFuncCallParams[1].Arg1.Body)).To(Equal(`["SCAN","10","MATCH","*"]`))
}

func (s *ScannerSuite) TestCursorKeptWhenClientDropsIt(t sweet.T) {
	transport := NewMockTransport()
	scanPages(transport)

	client := makeClient(transport, WithReturnCursor(false))

	keys, err := ScanKeys(context.Background(), client, func(cursor uint64) Command {
		return scanAll(cursor).WithoutCursor()
	})

	Expect(err).To(BeNil())
	Expect(keys).To(Equal([]string{"a", "b", "c"}))
}

func (s *ScannerSuite) TestPages(t sweet.T) {
	transport := NewMockTransport()
	sendSequence(
		transport,
		respond(200, `{"result":["Mw==",["Zg==","MQ=="]]}`),
		respond(200, `{"result":["MA==",[]]}`),
	)

	scanner := NewScanner(makeClient(transport), func(cursor uint64) Command {
		return HScan("h", cursor, ScanOptions{})
	})

	var pages []interface{}
	for scanner.Next(context.Background()) {
		pages = append(pages, scanner.Page())
	}

	Expect(scanner.Err()).To(BeNil())
	Expect(pages).To(Equal([]interface{}{
		HashScanResult{Cursor: 3, Fields: []FieldValue{{Field: "f", Value: "1"}}},
		HashScanResult{Cursor: 0, Fields: []FieldValue{}},
	}))

	Expect(scanner.Next(context.Background())).To(BeFalse())
	Expect(transport.SendFuncCallCount).To(Equal(2))
}

func (s *ScannerSuite) TestNotAScanCommand(t sweet.T) {
	transport := NewMockTransport()
	sendSequence(transport, respond(200, `{"result":"v"}`))

	scanner := NewScanner(makeClient(transport, WithEncoding(false)), func(cursor uint64) Command {
		return Get("k")
	})

	Expect(scanner.Next(context.Background())).To(BeFalse())
	Expect(scanner.Err()).To(MatchError("GET is not a scan command"))
	Expect(scanner.Page()).To(BeNil())
}

func (s *ScannerSuite) TestCommandError(t sweet.T) {
	transport := NewMockTransport()
	sendSequence(transport, respond(400, `{"error":"ERR invalid cursor"}`))

	_, err := ScanKeys(context.Background(), makeClient(transport), scanAll)
	Expect(err).To(Equal(&CommandError{Message: "ERR invalid cursor"}))
}

func (s *ScannerSuite) TestScanKeysRejectsHashPages(t sweet.T) {
	transport := NewMockTransport()
	sendSequence(transport, respond(200, `{"result":["MA==",[]]}`))

	_, err := ScanKeys(context.Background(), makeClient(transport), func(cursor uint64) Command {
		return HScan("h", cursor, ScanOptions{})
	})

	Expect(err).To(HaveOccurred())
}
