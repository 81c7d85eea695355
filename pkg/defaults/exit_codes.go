package defaults

// Exit codes for the CLI. A search that finds nothing is not an error.
const (
	ExitSuccess     = 0   // Run finished, found or not found
	ExitUserError   = 1   // Invalid arguments, configuration or wordlist
	ExitInterrupted = 130 // SIGINT/SIGTERM before the search finished
)
