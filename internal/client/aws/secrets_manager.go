package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-rebalancer/internal/logger"
)

// SecretsAPI is the slice of the Secrets Manager SDK the client calls.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerClient wraps the AWS Secrets Manager client.
type SecretsManagerClient struct {
	svc SecretsAPI
}

// NewSecretsManagerClient creates and initializes a new Secrets Manager client.
// It uses the default AWS configuration chain (environment variables, shared config, IAM role).
func NewSecretsManagerClient(ctx context.Context) (*SecretsManagerClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	return NewSecretsManagerClientWithAPI(secretsmanager.NewFromConfig(cfg)), nil
}

// NewSecretsManagerClientWithAPI wraps an existing Secrets Manager API implementation.
func NewSecretsManagerClientWithAPI(svc SecretsAPI) *SecretsManagerClient {
	return &SecretsManagerClient{svc: svc}
}

// fetch returns the secret string named by the ARN in secretArnEnvVar, or "" when the ARN
// is unset or the fetch fails.
func (c *SecretsManagerClient) fetch(ctx context.Context, secretArnEnvVar string) string {
	secretArn := os.Getenv(secretArnEnvVar)
	if secretArn == "" || c.svc == nil {
		logger.Log.Debug("Secret ARN environment variable not set", zap.String("arnEnvVar", secretArnEnvVar))
		return ""
	}

	result, err := c.svc.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretArn),
	})
	if err != nil || result.SecretString == nil || *result.SecretString == "" {
		logger.Log.Warn("Failed to retrieve secret from Secrets Manager, falling back",
			zap.String("secretArnEnvVar", secretArnEnvVar),
			zap.String("secretArn", secretArn),
			zap.Error(err),
		)
		return ""
	}
	return *result.SecretString
}

// GetSecretString fetches a secret string from AWS Secrets Manager using an ARN specified by an environment variable.
// If the ARN environment variable is not set or fetching fails, it falls back to fallbackEnvVar.
// A secret stored as a JSON object with a single key yields that key's value.
func (c *SecretsManagerClient) GetSecretString(ctx context.Context, secretArnEnvVar string, fallbackEnvVar string) (string, error) {
	if secret := c.fetch(ctx, secretArnEnvVar); secret != "" {
		var secretJSON map[string]string
		if err := json.Unmarshal([]byte(secret), &secretJSON); err == nil && len(secretJSON) == 1 {
			for key, value := range secretJSON {
				logger.Log.Info("Fetched secret from Secrets Manager (single-key JSON)", zap.String("jsonKey", key))
				return value, nil
			}
		}
		logger.Log.Info("Fetched secret from Secrets Manager", zap.String("arnEnvVar", secretArnEnvVar))
		return secret, nil
	}

	if value := os.Getenv(fallbackEnvVar); value != "" {
		logger.Log.Debug("Using secret value from direct environment variable", zap.String("envVar", fallbackEnvVar))
		return value, nil
	}

	return "", fmt.Errorf("secret not found using ARN env var '%s' or direct env var '%s'", secretArnEnvVar, fallbackEnvVar)
}

// GetOptionalSecretString behaves like GetSecretString but returns "" instead of an error.
func (c *SecretsManagerClient) GetOptionalSecretString(ctx context.Context, secretArnEnvVar string, fallbackEnvVar string) string {
	value, err := c.GetSecretString(ctx, secretArnEnvVar, fallbackEnvVar)
	if err != nil {
		return ""
	}
	return value
}

// GetSecretJSON fetches a JSON secret and unmarshals it into target.
// This is specifically tailored for the RDS secret format; there is no env fallback.
func (c *SecretsManagerClient) GetSecretJSON(ctx context.Context, secretArnEnvVar string, target interface{}) error {
	secret := c.fetch(ctx, secretArnEnvVar)
	if secret == "" {
		return fmt.Errorf("secret not found using ARN env var '%s'", secretArnEnvVar)
	}
	if err := json.Unmarshal([]byte(secret), target); err != nil {
		return fmt.Errorf("failed to parse JSON secret from '%s': %w", secretArnEnvVar, err)
	}
	return nil
}
