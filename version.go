package nexus

// Version is the engine version reported by the CLI.
const Version = "0.1.0"

// BuildDate is stamped by the release build via -ldflags.
var BuildDate = "dev"
