package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SecretsDir is where Docker mounts secrets.
var SecretsDir = "/run/secrets"

// ReadSecret reads a Docker secret file and trims surrounding whitespace.
func ReadSecret(secretName string) (string, error) {
	filePath := filepath.Join(SecretsDir, secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}

// ReadSecretOrEnv prefers the secret file and falls back to the environment
// variable envKey. It fails only when neither is set.
func ReadSecretOrEnv(secretName, envKey string) (string, error) {
	secret, err := ReadSecret(secretName)
	if err == nil {
		return secret, nil
	}
	if value, ok := os.LookupEnv(envKey); ok && value != "" {
		return value, nil
	}
	return "", fmt.Errorf("secret %s not found and %s is not set: %w", secretName, envKey, err)
}
