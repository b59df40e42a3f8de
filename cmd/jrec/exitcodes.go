package main

// Exit codes
const (
	ExitSuccess       = 0   // Success
	ExitError         = 1   // General error (invalid arguments, runtime failure)
	ExitConfigError   = 2   // Configuration error (bad config file, invalid settings)
	ExitDataError     = 3   // Data error (unreadable checkpoint, malformed input, failed save)
	ExitModelNotFound = 5   // Recommender model artifacts not found
	ExitInterrupted   = 130 // Crawl stopped by SIGINT/SIGTERM; checkpoint is consistent
)
