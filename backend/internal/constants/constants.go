package constants

// HTTP constants
const (
	// DefaultMaxBodyBytes is the request body limit when none is configured
	DefaultMaxBodyBytes = 1 << 20
	// GraphQLPath is where the GraphQL endpoint is mounted
	GraphQLPath = "/graphql"
)

// Shutdown constants
const (
	// ShutdownTimeoutSeconds bounds graceful shutdown of the HTTP server
	ShutdownTimeoutSeconds = 5
)

// Export constants
const (
	// ExportBatchSize is the number of rows sent per UNWIND statement
	ExportBatchSize = 500
)
