package config

import (
	"os"
)

// Deployment modes
const (
	ModeServer = "server"
	ModeLambda = "lambda"
	ModeAzure  = "azure-functions"
)

// ServerlessConfig holds serverless-specific configuration
type ServerlessConfig struct {
	Mode         string
	FunctionName string
	Region       string
	// HandlerPort is the port an Azure Functions host expects a custom handler on
	HandlerPort string
}

// DetectServerless inspects the environment the hosting runtime provides
func DetectServerless() *ServerlessConfig {
	if name := os.Getenv("AWS_LAMBDA_FUNCTION_NAME"); name != "" {
		return &ServerlessConfig{
			Mode:         ModeLambda,
			FunctionName: name,
			Region:       os.Getenv("AWS_REGION"),
		}
	}

	if port := os.Getenv("FUNCTIONS_CUSTOMHANDLER_PORT"); port != "" {
		return &ServerlessConfig{
			Mode:         ModeAzure,
			FunctionName: os.Getenv("WEBSITE_SITE_NAME"),
			Region:       os.Getenv("REGION_NAME"),
			HandlerPort:  port,
		}
	}

	return &ServerlessConfig{Mode: ModeServer}
}

// IsServerless returns true if a serverless runtime hosts the process
func (s *ServerlessConfig) IsServerless() bool {
	return s != nil && s.Mode != ModeServer
}

// AdaptConfigForServerless modifies configuration for the detected runtime
func AdaptConfigForServerless(config *Config) *Config {
	if config.Serverless == nil || config.Serverless.Mode != ModeAzure {
		return config
	}

	// the Functions host proxies /api/<function> to the custom handler
	config.Port = config.Serverless.HandlerPort
	if config.BasePath == "" && os.Getenv("BASE_PATH") == "" {
		config.BasePath = "/api"
	}

	return config
}
