package restis

import "github.com/gomodule/redigo/redis"

func Publish(channel string, message interface{}) Command {
	return build(redis.Args{"PUBLISH", channel, message}, replyShape{})
}

// PubSubChannels lists the active channels, optionally filtered by a
// glob pattern.
func PubSubChannels(pattern string) Command {
	args := redis.Args{"PUBSUB", "CHANNELS"}
	if pattern != "" {
		args = args.Add(pattern)
	}

	return build(args, replyShape{})
}

// PubSubNumSub returns the subscriber count of each channel as
// []SubscriberCount.
func PubSubNumSub(channels ...string) Command {
	return build(redis.Args{"PUBSUB", "NUMSUB"}.Add(toArgs(channels)...), replyShape{})
}

func PubSubNumPat() Command {
	return build(redis.Args{"PUBSUB", "NUMPAT"}, replyShape{})
}
