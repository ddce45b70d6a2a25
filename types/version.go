package types

// Version is the canonical project version.
// The CLI, gateway, and adapter event payloads share this version.
const Version = "0.3.0"
