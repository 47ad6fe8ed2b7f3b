// Package proxytest runs an in-process REST proxy in front of an
// in-memory store. Requests are executed on miniredis through a redigo
// connection and answered with the proxy's JSON envelopes.
package proxytest

import (
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/alicebob/miniredis/v2"
	"github.com/gomodule/redigo/redis"
	jsoniter "github.com/json-iterator/go"
)

// Proxy is a running test proxy. Its URL is the base URL of the client.
type Proxy struct {
	*httptest.Server
	Redis *miniredis.Miniredis

	token      string
	mutex      sync.Mutex
	requests   int
	sequence   int64
	syncTokens []string
}

// envelope is a result or error reply. A null result must still be
// written, so envelopes are maps rather than structs with omitempty.
type envelope map[string]interface{}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// New starts a proxy accepting the given bearer token.
func New(token string) (*Proxy, error) {
	mr, err := miniredis.Run()
	if err != nil {
		return nil, err
	}

	p := &Proxy{
		Redis: mr,
		token: token,
	}

	p.Server = httptest.NewServer(http.HandlerFunc(p.serve))
	return p, nil
}

// Close stops the proxy and the store behind it.
func (p *Proxy) Close() {
	p.Server.Close()
	p.Redis.Close()
}

// Requests returns the number of requests received.
func (p *Proxy) Requests() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.requests
}

// SyncTokens returns the sync token sent with each request, in order.
// Requests without a token are recorded as an empty string.
func (p *Proxy) SyncTokens() []string {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return append([]string(nil), p.syncTokens...)
}

func (p *Proxy) serve(w http.ResponseWriter, r *http.Request) {
	p.mutex.Lock()
	p.requests++
	p.sequence++
	p.syncTokens = append(p.syncTokens, r.Header.Get("Upstash-Sync-Token"))
	w.Header().Set("Upstash-Sync-Token", strconv.FormatInt(p.sequence, 10))
	p.mutex.Unlock()

	if r.Header.Get("Authorization") != "Bearer "+p.token {
		writeJSON(w, http.StatusUnauthorized, failure("Unauthorized"))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, failure(err.Error()))
		return
	}

	conn, err := redis.Dial("tcp", p.Redis.Addr())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, failure(err.Error()))
		return
	}

	defer conn.Close()

	encoded := r.Header.Get("Upstash-Encoding") == "base64"

	switch r.URL.Path {
	case "", "/":
		p.single(w, conn, body, encoded)
	case "/pipeline":
		p.pipeline(w, conn, body, encoded)
	case "/multi-exec":
		p.transaction(w, conn, body, encoded)
	default:
		writeJSON(w, http.StatusNotFound, failure("Not Found"))
	}
}

func (p *Proxy) single(w http.ResponseWriter, conn redis.Conn, body []byte, encoded bool) {
	var command []string
	if err := json.Unmarshal(body, &command); err != nil || len(command) == 0 {
		writeJSON(w, http.StatusBadRequest, failure("ERR failed to parse command"))
		return
	}

	reply, err := conn.Do(command[0], args(command)...)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{"result": encode(reply, encoded)})
}

func (p *Proxy) pipeline(w http.ResponseWriter, conn redis.Conn, body []byte, encoded bool) {
	var commands [][]string
	if err := json.Unmarshal(body, &commands); err != nil {
		writeJSON(w, http.StatusBadRequest, failure("ERR failed to parse pipeline"))
		return
	}

	envelopes := make([]envelope, 0, len(commands))
	for _, command := range commands {
		if len(command) == 0 {
			envelopes = append(envelopes, failure("ERR empty command"))
			continue
		}

		reply, err := conn.Do(command[0], args(command)...)
		if err != nil {
			envelopes = append(envelopes, failure(err.Error()))
			continue
		}

		envelopes = append(envelopes, envelope{"result": encode(reply, encoded)})
	}

	writeJSON(w, http.StatusOK, envelopes)
}

func (p *Proxy) transaction(w http.ResponseWriter, conn redis.Conn, body []byte, encoded bool) {
	var commands [][]string
	if err := json.Unmarshal(body, &commands); err != nil {
		writeJSON(w, http.StatusBadRequest, failure("ERR failed to parse transaction"))
		return
	}

	if err := conn.Send("MULTI"); err != nil {
		writeError(w, err)
		return
	}

	for _, command := range commands {
		if len(command) == 0 {
			writeJSON(w, http.StatusBadRequest, failure("ERR empty command"))
			return
		}

		if err := conn.Send(command[0], args(command)...); err != nil {
			writeError(w, err)
			return
		}
	}

	// A command rejected while queuing surfaces here as the first error
	// of the pending replies.
	reply, err := conn.Do("EXEC")
	if err != nil {
		writeError(w, err)
		return
	}

	values, ok := reply.([]interface{})
	if !ok {
		writeJSON(w, http.StatusBadRequest, failure("EXECABORT Transaction discarded"))
		return
	}

	envelopes := make([]envelope, 0, len(values))
	for _, value := range values {
		if e, ok := value.(redis.Error); ok {
			envelopes = append(envelopes, failure(e.Error()))
			continue
		}

		envelopes = append(envelopes, envelope{"result": encode(value, encoded)})
	}

	writeJSON(w, http.StatusOK, envelopes)
}

func failure(message string) envelope {
	return envelope{"error": message}
}

func args(command []string) []interface{} {
	values := make([]interface{}, 0, len(command)-1)
	for _, arg := range command[1:] {
		values = append(values, arg)
	}

	return values
}

// Render a reply as the proxy does: bulk and status strings are
// base64-encoded on request, except for the status reply OK.
func encode(value interface{}, encoded bool) interface{} {
	switch v := value.(type) {
	case []byte:
		if encoded {
			return base64.StdEncoding.EncodeToString(v)
		}

		return string(v)

	case string:
		if encoded && v != "OK" {
			return base64.StdEncoding.EncodeToString([]byte(v))
		}

		return v

	case []interface{}:
		values := make([]interface{}, 0, len(v))
		for _, elem := range v {
			values = append(values, encode(elem, encoded))
		}

		return values
	}

	return value
}

func writeError(w http.ResponseWriter, err error) {
	if e, ok := err.(redis.Error); ok {
		writeJSON(w, http.StatusBadRequest, failure(e.Error()))
		return
	}

	writeJSON(w, http.StatusInternalServerError, failure(err.Error()))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
