package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/seedrescue/recoveryd/pkg/explorer"
)

const (
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// MaxCombinationsKey is the default cap of candidates checked per session
	MaxCombinationsKey = "MAX_COMBINATIONS"
	// CacheTTLKey is the freshness window of cached balance records in seconds
	CacheTTLKey = "CACHE_TTL"
	// SourceTimeoutKey is the per-request timeout of every balance source in seconds
	SourceTimeoutKey = "SOURCE_TIMEOUT"
	// SourceIntervalKey is the minimum spacing between successive requests to the same source in milliseconds
	SourceIntervalKey = "SOURCE_INTERVAL"
	// MaxOutboundRequestsKey caps concurrent outbound requests across all sessions
	MaxOutboundRequestsKey = "MAX_OUTBOUND_REQUESTS"
	// GlobalRequestsPerSecondKey paces the process-wide outbound HTTP traffic
	GlobalRequestsPerSecondKey = "GLOBAL_REQUESTS_PER_SECOND"
	// StatsIntervalKey is the spacing of runtime stats log lines in seconds, 0 disables them
	StatsIntervalKey = "STATS_INTERVAL"
	// BlockstreamURLKey is the base url of the blockstream.info source
	BlockstreamURLKey = "BLOCKSTREAM_URL"
	// BlockchainInfoURLKey is the base url of the blockchain.info source
	BlockchainInfoURLKey = "BLOCKCHAIN_INFO_URL"
	// BlockCypherURLKey is the base url of the blockcypher.com source
	BlockCypherURLKey = "BLOCKCYPHER_URL"
	// SoChainURLKey is the base url of the sochain.com source
	SoChainURLKey = "SOCHAIN_URL"
)

var vip *viper.Viper

func init() {
	vip = viper.New()
	vip.SetEnvPrefix("RECOVERY")
	vip.AutomaticEnv()

	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(MaxCombinationsKey, 100000)
	vip.SetDefault(CacheTTLKey, 300)
	vip.SetDefault(SourceTimeoutKey, 4)
	vip.SetDefault(SourceIntervalKey, 500)
	vip.SetDefault(MaxOutboundRequestsKey, 16)
	vip.SetDefault(GlobalRequestsPerSecondKey, 10)
	vip.SetDefault(StatsIntervalKey, 0)
	vip.SetDefault(BlockstreamURLKey, explorer.DefaultBlockstreamURL)
	vip.SetDefault(BlockchainInfoURLKey, explorer.DefaultBlockchainInfoURL)
	vip.SetDefault(BlockCypherURLKey, explorer.DefaultBlockCypherURL)
	vip.SetDefault(SoChainURLKey, explorer.DefaultSoChainURL)
}

// GetString ...
func GetString(key string) string {
	return vip.GetString(key)
}

// GetInt ...
func GetInt(key string) int {
	return vip.GetInt(key)
}

// GetDuration returns the value of the key, expressed in the given unit.
func GetDuration(key string, unit time.Duration) time.Duration {
	return time.Duration(vip.GetInt(key)) * unit
}

// Validate checks the sanity of the configured values. It panics on invalid
// configurations, the daemon must not start half-configured.
func Validate() {
	if GetInt(MaxCombinationsKey) <= 0 {
		panic(fmt.Errorf("%s must be a positive number", MaxCombinationsKey))
	}
	if GetInt(SourceTimeoutKey) <= 0 {
		panic(fmt.Errorf("%s must be a positive number of seconds", SourceTimeoutKey))
	}
	if GetInt(MaxOutboundRequestsKey) <= 0 {
		panic(fmt.Errorf("%s must be a positive number", MaxOutboundRequestsKey))
	}
	for _, key := range []string{
		BlockstreamURLKey, BlockchainInfoURLKey, BlockCypherURLKey, SoChainURLKey,
	} {
		if GetString(key) == "" {
			panic(fmt.Errorf("%s must not be empty", key))
		}
	}
}
