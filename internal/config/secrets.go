package config

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// SecretManager reads plain-text secrets from Google Cloud Secret Manager
type SecretManager struct {
	client    *secretmanager.Client
	projectID string
	cache     map[string]*cacheEntry
	cacheMu   sync.RWMutex
	cacheTTL  time.Duration
}

// NewSecretManager creates a new GCP Secret Manager client
func NewSecretManager(ctx context.Context, projectID string) (*SecretManager, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create secret manager client: %w", err)
	}

	return &SecretManager{
		client:    client,
		projectID: projectID,
		cache:     make(map[string]*cacheEntry),
		cacheTTL:  5 * time.Minute,
	}, nil
}

// Close closes the Secret Manager client
func (sm *SecretManager) Close() error {
	if sm.client != nil {
		return sm.client.Close()
	}
	return nil
}

// Get returns the latest version of a secret. name is either a bare secret id or
// a full projects/.../secrets/... resource name.
func (sm *SecretManager) Get(ctx context.Context, name string) (string, error) {
	resource := sm.resourceName(name)

	sm.cacheMu.RLock()
	if entry, ok := sm.cache[resource]; ok && time.Now().Before(entry.expiresAt) {
		sm.cacheMu.RUnlock()
		return entry.value, nil
	}
	sm.cacheMu.RUnlock()

	result, err := sm.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: resource + "/versions/latest",
	})
	if err != nil {
		return "", fmt.Errorf("failed to access secret: %w", err)
	}

	value := strings.TrimSpace(string(result.Payload.Data))

	sm.cacheMu.Lock()
	sm.cache[resource] = &cacheEntry{value: value, expiresAt: time.Now().Add(sm.cacheTTL)}
	sm.cacheMu.Unlock()

	return value, nil
}

func (sm *SecretManager) resourceName(name string) string {
	if strings.HasPrefix(name, "projects/") {
		return name
	}
	return fmt.Sprintf("projects/%s/secrets/%s", sm.projectID, name)
}
