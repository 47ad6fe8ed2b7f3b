package restis

import (
	"github.com/aphistic/sweet"
	. "github.com/onsi/gomega"
)

type CodecSuite struct{}

func (s *CodecSuite) TestEncodeCommand(t sweet.T) {
	body, err := encodeCommand(NewCommand("set", "foo", 1.5))
	Expect(err).To(BeNil())
	Expect(string(body)).To(Equal(`["SET","foo","1.5"]`))
}

func (s *CodecSuite) TestEncodeBatch(t sweet.T) {
	body, err := encodeBatch([]Command{Incr("a"), Get("b")})
	Expect(err).To(BeNil())
	Expect(string(body)).To(Equal(`[["INCR","a"],["GET","b"]]`))
}

func (s *CodecSuite) TestDecodeBase64(t sweet.T) {
	r, err := decodeSingle([]byte(`{"result":["OK","Zm9v",["YmFy",3],null]}`), true)
	Expect(err).To(BeNil())
	Expect(r.err).To(BeNil())
	Expect(r.value).To(Equal([]interface{}{
		[]byte("OK"),
		[]byte("foo"),
		[]interface{}{[]byte("bar"), int64(3)},
		nil,
	}))
}

func (s *CodecSuite) TestDecodeOKUntouched(t sweet.T) {
	r, err := decodeSingle([]byte(`{"result":"OK"}`), true)
	Expect(err).To(BeNil())
	Expect(r.value).To(Equal([]byte("OK")))
}

func (s *CodecSuite) TestDecodeUnencoded(t sweet.T) {
	r, err := decodeSingle([]byte(`{"result":"Zm9v"}`), false)
	Expect(err).To(BeNil())
	Expect(r.value).To(Equal([]byte("Zm9v")))
}

func (s *CodecSuite) TestDecodeLargeInteger(t sweet.T) {
	r, err := decodeSingle([]byte(`{"result":9007199254740993}`), true)
	Expect(err).To(BeNil())
	Expect(r.value).To(Equal(int64(9007199254740993)))
}

func (s *CodecSuite) TestDecodeBadBase64(t sweet.T) {
	_, err := decodeSingle([]byte(`{"result":"!!!"}`), true)
	Expect(err).To(HaveOccurred())
}

func (s *CodecSuite) TestDecodeMalformed(t sweet.T) {
	_, err := decodeSingle([]byte(`not json`), true)
	Expect(err).To(HaveOccurred())

	_, err = decodeSingle([]byte(`{"value":1}`), true)
	Expect(err).To(HaveOccurred())

	_, err = decodeSingle([]byte(`[1,2]`), true)
	Expect(err).To(HaveOccurred())
}

func (s *CodecSuite) TestDecodeErrorEnvelope(t sweet.T) {
	r, err := decodeSingle([]byte(`{"error":"ERR wrong number of arguments"}`), true)
	Expect(err).To(BeNil())
	Expect(r.err).To(Equal(&CommandError{Message: "ERR wrong number of arguments"}))
}

func (s *CodecSuite) TestDecodeBatch(t sweet.T) {
	replies, err := decodeBatch([]byte(`[{"result":"OK"},{"error":"ERR boom"},{"result":2}]`), 3, true)
	Expect(err).To(BeNil())
	Expect(replies).To(HaveLen(3))
	Expect(replies[0].value).To(Equal([]byte("OK")))
	Expect(replies[1].err).To(Equal(&CommandError{Message: "ERR boom"}))
	Expect(replies[2].value).To(Equal(int64(2)))
}

func (s *CodecSuite) TestDecodeBatchWrongLength(t sweet.T) {
	_, err := decodeBatch([]byte(`[{"result":"OK"}]`), 2, true)
	Expect(err).To(HaveOccurred())
}

func (s *CodecSuite) TestDecodeError(t sweet.T) {
	message, ok := decodeError([]byte(`{"error":"EXECABORT Transaction discarded"}`))
	Expect(ok).To(BeTrue())
	Expect(message).To(Equal("EXECABORT Transaction discarded"))

	_, ok = decodeError([]byte(`[{"result":1}]`))
	Expect(ok).To(BeFalse())
}
