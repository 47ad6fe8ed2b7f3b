package restis

import (
	"context"

	"github.com/pkg/errors"
)

// Scanner iterates a SCAN-family command page by page, from cursor 0
// until the proxy returns cursor 0 again.
//
//	scanner := NewScanner(client, func(cursor uint64) Command {
//		return Scan(cursor, ScanOptions{Match: "user:*"})
//	})
//
//	for scanner.Next(ctx) {
//		page := scanner.Page().(ScanResult)
//	}
type Scanner struct {
	client Client
	next   func(cursor uint64) Command
	cursor uint64
	page   interface{}
	done   bool
	err    error
}

// NewScanner creates a scanner issuing the command returned by next for
// each cursor.
func NewScanner(client Client, next func(cursor uint64) Command) *Scanner {
	return &Scanner{
		client: client,
		next:   next,
	}
}

// Next fetches the next page. It returns false once the iteration is
// complete or has failed.
func (s *Scanner) Next(ctx context.Context) bool {
	if s.done {
		return false
	}

	command := s.next(s.cursor)
	command.keepCursor = true
	command.noCursor = false
	command.raw = false

	page, err := s.client.Run(ctx, command)
	if err != nil {
		s.fail(err)
		return false
	}

	var cursor uint64
	switch v := page.(type) {
	case ScanResult:
		cursor = v.Cursor
	case HashScanResult:
		cursor = v.Cursor
	case ZSetScanResult:
		cursor = v.Cursor
	default:
		s.fail(errors.Errorf("%s is not a scan command", command.Family()))
		return false
	}

	s.page = page
	s.cursor = cursor
	s.done = cursor == 0
	return true
}

// Page returns the page fetched by the last call to Next: a ScanResult,
// HashScanResult or ZSetScanResult.
func (s *Scanner) Page() interface{} {
	return s.page
}

// Err returns the error that ended the iteration, if any.
func (s *Scanner) Err() error {
	return s.err
}

func (s *Scanner) fail(err error) {
	s.err = err
	s.page = nil
	s.done = true
}

// ScanKeys collects every key matched by a SCAN or SSCAN iteration.
func ScanKeys(ctx context.Context, client Client, next func(cursor uint64) Command) ([]string, error) {
	var (
		keys    []string
		scanner = NewScanner(client, next)
	)

	for scanner.Next(ctx) {
		page, ok := scanner.Page().(ScanResult)
		if !ok {
			return nil, errors.New("scan pages do not hold keys")
		}

		keys = append(keys, page.Keys...)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return keys, nil
}
