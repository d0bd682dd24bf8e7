package client

// Defines structs describing netconf configuration.

// Config defines properties that configure netconf session behaviour.
type Config struct {
	// Defines the time in seconds that the client will wait to receive a hello message from the server.
	SetupTimeoutSecs int

	// Keeps the session on end-of-message framing, regardless of what the server advertises.
	// The client will not offer base 1.1 in its hello when this is set.
	DisableChunkedCodec bool
}

var DefaultConfig = &Config{
	SetupTimeoutSecs: 5,
}
