package types

type RunMode string

const (
	// ModeLocal runs the HTTP server in-process
	ModeLocal RunMode = "local"
	// ModeAWSLambdaAPI serves the same router behind API Gateway in AWS Lambda
	ModeAWSLambdaAPI RunMode = "aws_lambda_api"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// StoreProvider selects the document store backing accounts and plans
type StoreProvider string

const (
	StoreProviderFirestore StoreProvider = "firestore"
	StoreProviderDynamoDB  StoreProvider = "dynamodb"
)

// AuthProvider selects how caller identity tokens are verified
type AuthProvider string

const (
	AuthProviderFirebase AuthProvider = "firebase"
	AuthProviderJWT      AuthProvider = "jwt"
)
