// Relayd is the ChordLab streaming inference relay.
//
// It sits between the browser-based composition client and a local
// model-serving backend, providing:
//   - Per-session conversation state with transactional turn commits
//   - NDJSON-to-SSE re-framing of backend token streams
//   - Agent profile management with live reload
//   - Usage accounting with configurable retention
//
// Usage:
//
//	# Start the relay with default configuration
//	relayd run
//
//	# Start with a custom configuration file
//	relayd run --config /path/to/relay.yaml
//
//	# Validate configuration without starting
//	relayd validate
//
//	# List agent profiles
//	relayd agents --output json
//
//	# Show version information
//	relayd version
package main

func main() {
	Execute()
}
