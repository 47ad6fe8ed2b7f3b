package restis

import (
	"strings"

	"github.com/gomodule/redigo/redis"
)

type (
	// GeoAddOptions are the flags of GEOADD.
	GeoAddOptions struct {
		NX bool
		XX bool
		CH bool
	}

	// GeoQueryOptions are the clauses shared by the radius and search
	// commands. Store and StoreDist are only used by the radius commands.
	GeoQueryOptions struct {
		WithDist  bool
		WithHash  bool
		WithCoord bool
		Count     int64
		Any       bool
		Order     string
		Store     string
		StoreDist string
	}

	// GeoSearchOptions select the centre and shape of a GEOSEARCH. The
	// centre is either FromMember or FromLonLat; the shape is either
	// ByRadius or ByBox (Width and Height).
	GeoSearchOptions struct {
		FromMember string
		FromLonLat *GeoPosition
		ByRadius   float64
		Width      float64
		Height     float64
		Unit       string
		GeoQueryOptions
	}
)

// GeoAdd adds members with their coordinates to the geo set at key.
func GeoAdd(key string, opts GeoAddOptions, members ...GeoMember) Command {
	if len(members) == 0 {
		return invalidCommand(newValidationError("GEOADD", "at least one member is required"))
	}

	if opts.NX && opts.XX {
		return invalidCommand(newValidationError("GEOADD", "NX and XX are mutually exclusive"))
	}

	args := redis.Args{"GEOADD", key}
	args = addFlag(args, "NX", opts.NX)
	args = addFlag(args, "XX", opts.XX)
	args = addFlag(args, "CH", opts.CH)

	for _, member := range members {
		args = args.Add(member.Longitude, member.Latitude, member.Member)
	}

	return build(args, replyShape{})
}

// GeoPos returns the position of each member as []*GeoPosition.
func GeoPos(key string, members ...string) Command {
	if len(members) == 0 {
		return invalidCommand(newValidationError("GEOPOS", "at least one member is required"))
	}

	return build(redis.Args{"GEOPOS", key}.Add(toArgs(members)...), replyShape{})
}

// GeoHash returns the geohash string of each member.
func GeoHash(key string, members ...string) Command {
	if len(members) == 0 {
		return invalidCommand(newValidationError("GEOHASH", "at least one member is required"))
	}

	return build(redis.Args{"GEOHASH", key}.Add(toArgs(members)...), replyShape{})
}

// GeoDist returns the distance between two members as a float64, or nil
// when either is missing. An empty unit means metres.
func GeoDist(key, member1, member2, unit string) Command {
	args := redis.Args{"GEODIST", key, member1, member2}
	if unit != "" {
		u, err := geoUnit("GEODIST", unit)
		if err != nil {
			return invalidCommand(err)
		}

		args = args.Add(u)
	}

	return build(args, replyShape{})
}

// GeoRadius queries the members within radius of a point.
func GeoRadius(key string, longitude, latitude, radius float64, unit string, opts GeoQueryOptions) Command {
	return geoRadius("GEORADIUS", redis.Args{"GEORADIUS", key, longitude, latitude, radius}, unit, opts)
}

// GeoRadiusByMember queries the members within radius of a member.
func GeoRadiusByMember(key, member string, radius float64, unit string, opts GeoQueryOptions) Command {
	return geoRadius("GEORADIUSBYMEMBER", redis.Args{"GEORADIUSBYMEMBER", key, member, radius}, unit, opts)
}

func geoRadius(verb string, args redis.Args, unit string, opts GeoQueryOptions) Command {
	u, err := geoUnit(verb, unit)
	if err != nil {
		return invalidCommand(err)
	}

	storing := opts.Store != "" || opts.StoreDist != ""
	if storing && (opts.WithDist || opts.WithHash || opts.WithCoord) {
		return invalidCommand(newValidationError(verb, "WITH options cannot be combined with STORE or STOREDIST"))
	}

	args, shape, err := opts.append(verb, args.Add(u))
	if err != nil {
		return invalidCommand(err)
	}

	if opts.Store != "" {
		args = args.Add("STORE", opts.Store)
	}

	if opts.StoreDist != "" {
		args = args.Add("STOREDIST", opts.StoreDist)
	}

	return build(args, shape)
}

// GeoSearch queries the members within a radius or box.
func GeoSearch(key string, opts GeoSearchOptions) Command {
	if opts.Store != "" || opts.StoreDist != "" {
		return invalidCommand(newValidationError("GEOSEARCH", "use GeoSearchStore to store results"))
	}

	args, err := opts.shape("GEOSEARCH", redis.Args{"GEOSEARCH", key})
	if err != nil {
		return invalidCommand(err)
	}

	args, shape, err := opts.GeoQueryOptions.append("GEOSEARCH", args)
	if err != nil {
		return invalidCommand(err)
	}

	return build(args, shape)
}

// GeoSearchStore stores the members within a radius or box of source
// in destination, with their distances when storeDist is set.
func GeoSearchStore(destination, source string, opts GeoSearchOptions, storeDist bool) Command {
	if opts.WithDist || opts.WithHash || opts.WithCoord {
		return invalidCommand(newValidationError("GEOSEARCHSTORE", "WITH options cannot be combined with a destination"))
	}

	args, err := opts.shape("GEOSEARCHSTORE", redis.Args{"GEOSEARCHSTORE", destination, source})
	if err != nil {
		return invalidCommand(err)
	}

	args, _, err = opts.GeoQueryOptions.append("GEOSEARCHSTORE", args)
	if err != nil {
		return invalidCommand(err)
	}

	return build(addFlag(args, "STOREDIST", storeDist), replyShape{})
}

// Add the centre, shape and unit clauses of a search.
func (o GeoSearchOptions) shape(verb string, args redis.Args) (redis.Args, error) {
	switch {
	case o.FromMember != "" && o.FromLonLat != nil:
		return nil, newValidationError(verb, "FROMMEMBER and FROMLONLAT are mutually exclusive")
	case o.FromMember != "":
		args = args.Add("FROMMEMBER", o.FromMember)
	case o.FromLonLat != nil:
		args = args.Add("FROMLONLAT", o.FromLonLat.Longitude, o.FromLonLat.Latitude)
	default:
		return nil, newValidationError(verb, "one of FROMMEMBER and FROMLONLAT is required")
	}

	byBox := o.Width != 0 || o.Height != 0

	switch {
	case o.ByRadius != 0 && byBox:
		return nil, newValidationError(verb, "BYRADIUS and BYBOX are mutually exclusive")
	case o.ByRadius != 0:
		args = args.Add("BYRADIUS", o.ByRadius)
	case byBox:
		args = args.Add("BYBOX", o.Width, o.Height)
	default:
		return nil, newValidationError(verb, "one of BYRADIUS and BYBOX is required")
	}

	unit, err := geoUnit(verb, o.Unit)
	if err != nil {
		return nil, err
	}

	return args.Add(unit), nil
}

// Add the ordering, count and extras clauses of a query. The extras are
// emitted in the order of the shared geoExtras table, which is also the
// order their values appear in a reply.
func (o GeoQueryOptions) append(verb string, args redis.Args) (redis.Args, replyShape, error) {
	if o.Any && o.Count == 0 {
		return nil, replyShape{}, newValidationError(verb, "ANY requires a count")
	}

	if o.Order != "" {
		order := strings.ToUpper(o.Order)
		if order != "ASC" && order != "DESC" {
			return nil, replyShape{}, newValidationError(verb, "order must be ASC or DESC, got %q", o.Order)
		}

		args = args.Add(order)
	}

	if o.Count != 0 {
		args = addFlag(args.Add("COUNT", o.Count), "ANY", o.Any)
	}

	requested := map[string]bool{
		"WITHDIST":  o.WithDist,
		"WITHHASH":  o.WithHash,
		"WITHCOORD": o.WithCoord,
	}

	shape := replyShape{}
	for _, extra := range geoExtras {
		if requested[extra.token] {
			args = args.Add(extra.token)
			shape.geoExtras = append(shape.geoExtras, extra)
		}
	}

	return args, shape, nil
}

func geoUnit(verb, unit string) (string, error) {
	if unit == "" {
		return "M", nil
	}

	switch u := strings.ToUpper(unit); u {
	case "M", "KM", "FT", "MI":
		return u, nil
	}

	return "", newValidationError(verb, "unknown unit %q", unit)
}
