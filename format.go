package restis

import (
	"strconv"

	"github.com/gomodule/redigo/redis"
	"github.com/pkg/errors"
)

type (
	formatFunc func(c Command, value interface{}) (interface{}, error)

	// geoExtra is an optional WITH clause of a geo query. Replies carry the
	// extras in the order of the geoExtras table, whatever order they
	// were requested in.
	geoExtra struct {
		token string
		apply func(result *GeoResult, value interface{}) error
	}
)

var geoExtras = []geoExtra{
	{token: "WITHDIST", apply: applyDistance},
	{token: "WITHHASH", apply: applyHash},
	{token: "WITHCOORD", apply: applyCoordinates},
}

// Format a raw reply with the formatter registered for the command's
// family. Families without a formatter get the native reply.
func formatReply(c Command, value interface{}) (interface{}, error) {
	spec, ok := commandTable[c.family]
	if !ok || spec.format == nil {
		return native(value), nil
	}

	result, err := spec.format(c, value)
	if err != nil {
		return nil, &FormattingError{Family: c.family, Reason: err.Error()}
	}

	return result, nil
}

// Convert a raw reply into plain Go values: byte slices become strings,
// recursively.
func native(value interface{}) interface{} {
	switch v := value.(type) {
	case []byte:
		return string(v)

	case []interface{}:
		values := make([]interface{}, 0, len(v))
		for _, elem := range v {
			values = append(values, native(elem))
		}

		return values
	}

	return value
}

func formatBool(c Command, value interface{}) (interface{}, error) {
	return redis.Bool(value, nil)
}

func formatOK(c Command, value interface{}) (interface{}, error) {
	if value == nil {
		return false, nil
	}

	s, err := redis.String(value, nil)
	if err != nil {
		return nil, err
	}

	return s == "OK", nil
}

func formatSet(c Command, value interface{}) (interface{}, error) {
	if c.shape.setGet {
		return native(value), nil
	}

	return formatOK(c, value)
}

func formatFloat(c Command, value interface{}) (interface{}, error) {
	return redis.Float64(value, nil)
}

func formatOptionalFloat(c Command, value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}

	return redis.Float64(value, nil)
}

func formatOptionalFloatList(c Command, value interface{}) (interface{}, error) {
	values, err := redis.Values(value, nil)
	if err != nil {
		return nil, err
	}

	scores := make([]*float64, 0, len(values))
	for _, elem := range values {
		if elem == nil {
			scores = append(scores, nil)
			continue
		}

		score, err := redis.Float64(elem, nil)
		if err != nil {
			return nil, err
		}

		scores = append(scores, &score)
	}

	return scores, nil
}

func formatBoolList(c Command, value interface{}) (interface{}, error) {
	ints, err := redis.Int64s(value, nil)
	if err != nil {
		return nil, err
	}

	bools := make([]bool, 0, len(ints))
	for _, n := range ints {
		bools = append(bools, n == 1)
	}

	return bools, nil
}

func formatPairs(c Command, value interface{}) (interface{}, error) {
	return toFieldValues(value)
}

func formatHRandField(c Command, value interface{}) (interface{}, error) {
	if c.shape.withValues {
		return toFieldValues(value)
	}

	return native(value), nil
}

func formatNumSub(c Command, value interface{}) (interface{}, error) {
	values, err := pairsOf(value)
	if err != nil {
		return nil, err
	}

	counts := make([]SubscriberCount, 0, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		channel, err := redis.String(values[i], nil)
		if err != nil {
			return nil, err
		}

		count, err := redis.Int64(values[i+1], nil)
		if err != nil {
			return nil, err
		}

		counts = append(counts, SubscriberCount{Channel: channel, Count: count})
	}

	return counts, nil
}

func formatZAdd(c Command, value interface{}) (interface{}, error) {
	if c.shape.zaddIncr {
		return formatOptionalFloat(c, value)
	}

	return native(value), nil
}

func formatScored(c Command, value interface{}) (interface{}, error) {
	return toScoredMembers(value)
}

func formatScoredIfRequested(c Command, value interface{}) (interface{}, error) {
	if c.shape.withScores {
		return toScoredMembers(value)
	}

	return native(value), nil
}

func formatScan(c Command, value interface{}) (interface{}, error) {
	cursor, elements, err := scanPage(value)
	if err != nil {
		return nil, err
	}

	keys, err := redis.Strings(elements, nil)
	if err != nil {
		return nil, err
	}

	if c.noCursor {
		return keys, nil
	}

	return ScanResult{Cursor: cursor, Keys: keys}, nil
}

func formatHashScan(c Command, value interface{}) (interface{}, error) {
	cursor, elements, err := scanPage(value)
	if err != nil {
		return nil, err
	}

	fields, err := toFieldValues(elements)
	if err != nil {
		return nil, err
	}

	if c.noCursor {
		return fields, nil
	}

	return HashScanResult{Cursor: cursor, Fields: fields}, nil
}

func formatZSetScan(c Command, value interface{}) (interface{}, error) {
	cursor, elements, err := scanPage(value)
	if err != nil {
		return nil, err
	}

	members, err := toScoredMembers(elements)
	if err != nil {
		return nil, err
	}

	if c.noCursor {
		return members, nil
	}

	return ZSetScanResult{Cursor: cursor, Members: members}, nil
}

func formatTime(c Command, value interface{}) (interface{}, error) {
	values, err := redis.Int64s(value, nil)
	if err != nil {
		return nil, err
	}

	if len(values) != 2 {
		return nil, errors.Errorf("expected 2 elements, got %d", len(values))
	}

	return TimeResult{Seconds: values[0], Microseconds: values[1]}, nil
}

func formatGeoPositions(c Command, value interface{}) (interface{}, error) {
	values, err := redis.Values(value, nil)
	if err != nil {
		return nil, err
	}

	positions := make([]*GeoPosition, 0, len(values))
	for _, elem := range values {
		if elem == nil {
			positions = append(positions, nil)
			continue
		}

		longitude, latitude, err := coordinatesOf(elem)
		if err != nil {
			return nil, err
		}

		positions = append(positions, &GeoPosition{Longitude: longitude, Latitude: latitude})
	}

	return positions, nil
}

func formatGeoMembers(c Command, value interface{}) (interface{}, error) {
	if len(c.shape.geoExtras) == 0 {
		// Stored queries reply with a count.
		if _, ok := value.([]interface{}); !ok {
			return native(value), nil
		}

		return redis.Strings(value, nil)
	}

	values, err := redis.Values(value, nil)
	if err != nil {
		return nil, err
	}

	results := make([]GeoResult, 0, len(values))
	for _, elem := range values {
		fields, err := redis.Values(elem, nil)
		if err != nil {
			return nil, err
		}

		if len(fields) != len(c.shape.geoExtras)+1 {
			return nil, errors.Errorf("expected %d fields per member, got %d", len(c.shape.geoExtras)+1, len(fields))
		}

		member, err := redis.String(fields[0], nil)
		if err != nil {
			return nil, err
		}

		result := GeoResult{Member: member}
		for i, extra := range c.shape.geoExtras {
			if err := extra.apply(&result, fields[i+1]); err != nil {
				return nil, err
			}
		}

		results = append(results, result)
	}

	return results, nil
}

func applyDistance(result *GeoResult, value interface{}) error {
	distance, err := redis.Float64(value, nil)
	if err != nil {
		return err
	}

	result.Distance = &distance
	return nil
}

func applyHash(result *GeoResult, value interface{}) error {
	hash, err := redis.Int64(value, nil)
	if err != nil {
		return err
	}

	result.Hash = &hash
	return nil
}

func applyCoordinates(result *GeoResult, value interface{}) error {
	longitude, latitude, err := coordinatesOf(value)
	if err != nil {
		return err
	}

	result.Longitude = &longitude
	result.Latitude = &latitude
	return nil
}

//
// Shape helpers

func pairsOf(value interface{}) ([]interface{}, error) {
	values, err := redis.Values(value, nil)
	if err != nil {
		return nil, err
	}

	if len(values)%2 != 0 {
		return nil, errors.Errorf("expected an even number of elements, got %d", len(values))
	}

	return values, nil
}

func toFieldValues(value interface{}) ([]FieldValue, error) {
	values, err := pairsOf(value)
	if err != nil {
		return nil, err
	}

	strs, err := redis.Strings(values, nil)
	if err != nil {
		return nil, err
	}

	fields := make([]FieldValue, 0, len(strs)/2)
	for i := 0; i < len(strs); i += 2 {
		fields = append(fields, FieldValue{Field: strs[i], Value: strs[i+1]})
	}

	return fields, nil
}

func toScoredMembers(value interface{}) ([]ScoredMember, error) {
	values, err := pairsOf(value)
	if err != nil {
		return nil, err
	}

	members := make([]ScoredMember, 0, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		member, err := redis.String(values[i], nil)
		if err != nil {
			return nil, err
		}

		// Infinite scores arrive as inf/-inf, which ParseFloat accepts.
		score, err := redis.Float64(values[i+1], nil)
		if err != nil {
			return nil, err
		}

		members = append(members, ScoredMember{Member: member, Score: score})
	}

	return members, nil
}

// Cursors are unsigned 64-bit integers and may exceed MaxInt64.
func scanPage(value interface{}) (uint64, interface{}, error) {
	values, err := redis.Values(value, nil)
	if err != nil {
		return 0, nil, err
	}

	if len(values) != 2 {
		return 0, nil, errors.Errorf("expected cursor and elements, got %d values", len(values))
	}

	if n, ok := values[0].(int64); ok && n >= 0 {
		return uint64(n), values[1], nil
	}

	raw, err := redis.String(values[0], nil)
	if err != nil {
		return 0, nil, err
	}

	cursor, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, nil, errors.Wrap(err, "parsing cursor")
	}

	return cursor, values[1], nil
}

func coordinatesOf(value interface{}) (float64, float64, error) {
	values, err := redis.Float64s(value, nil)
	if err != nil {
		return 0, 0, err
	}

	if len(values) != 2 {
		return 0, 0, errors.Errorf("expected longitude and latitude, got %d values", len(values))
	}

	return values[0], values[1], nil
}
