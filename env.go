package restis

import "github.com/spf13/viper"

// Environment variable prefix of the client settings.
const envPrefix = "UPSTASH_REDIS_REST"

// NewClientFromEnv creates a client configured from the environment:
// UPSTASH_REDIS_REST_URL, UPSTASH_REDIS_REST_TOKEN, and optionally
// UPSTASH_REDIS_REST_RETRIES and UPSTASH_REDIS_REST_RETRY_INTERVAL (a
// duration such as 500ms). Explicit configs are applied afterwards.
func NewClientFromEnv(configs ...ConfigFunc) (Client, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetDefault("retries", defaultRetries)
	v.SetDefault("retry_interval", defaultRetryInterval)

	url := v.GetString("url")
	if url == "" {
		return nil, ErrMissingURL
	}

	envConfigs := []ConfigFunc{
		WithToken(v.GetString("token")),
		WithRetries(v.GetInt("retries")),
		WithRetryInterval(v.GetDuration("retry_interval")),
	}

	return NewClient(url, append(envConfigs, configs...)...)
}
