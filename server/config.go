// File: server/config.go
package server

import "time"

// Config holds every tunable the dispatcher and handshake state
// machine need, grounded on original_source/src/net/server.rs'
// ServerConfig and in the style of utils.Config's flat struct plus
// DefaultConfig() constructor.
type Config struct {
	Port                 uint16        `json:"port"`
	LogConnections       bool          `json:"logConnections"`
	LogPackets           bool          `json:"logPackets"`
	MaxPayloadSize       int           `json:"maxPayloadSize"`
	ResendBudget         int           `json:"resendBudget"`
	PlayerAssetLimit     int           `json:"playerAssetLimit"`
	AvatarDimensionLimit uint32        `json:"avatarDimensionLimit"`
	TickInterval         time.Duration `json:"tickInterval"`
	MaxSilence           time.Duration `json:"maxSilence"`
	MailboxAskTimeout    time.Duration `json:"mailboxAskTimeout"`
}

// DefaultConfig returns production-shaped defaults: a 20Hz clock
// (matching spec §5), a 5s silence timeout before a client is kicked
// (matching original_source/src/net/server.rs's max_silence), and a
// 64KiB per-client avatar asset limit.
func DefaultConfig() Config {
	return Config{
		Port:                 8765,
		LogConnections:       true,
		LogPackets:           false,
		MaxPayloadSize:       1350,
		ResendBudget:         4,
		PlayerAssetLimit:     64 * 1024,
		AvatarDimensionLimit: 256,
		TickInterval:         50 * time.Millisecond,
		MaxSilence:           5 * time.Second,
		MailboxAskTimeout:    2 * time.Second,
	}
}

// FastConfig trims the tick interval and silence window for tests that
// need to observe kicks/retransmits without waiting on real-world
// timers.
func FastConfig() Config {
	c := DefaultConfig()
	c.TickInterval = time.Millisecond
	c.MaxSilence = 20 * time.Millisecond
	c.LogConnections = false
	return c
}
