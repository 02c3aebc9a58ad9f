package firebase

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	credentials "cloud.google.com/go/iam/credentials/apiv1"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"fitness-directory/backend/internal/config"
)

// Clients bundles the Firebase and GCP clients the API needs.
type Clients struct {
	App       *firebase.App
	Auth      *auth.Client
	Firestore *firestore.Client
	// IAM signs gallery upload URLs. Nil when no signing account is configured.
	IAM *credentials.IamCredentialsClient
}

// Options prefers FIREBASE_SERVICE_ACCOUNT_JSON (raw json content), then
// GOOGLE_APPLICATION_CREDENTIALS (file path). Without either, Application
// Default Credentials apply.
func Options() []option.ClientOption {
	if json := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); json != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(json))}
	}
	if cred := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); cred != "" {
		return []option.ClientOption{option.WithCredentialsFile(cred)}
	}
	return nil
}

func NewApp(ctx context.Context, cfg config.Config) (*firebase.App, error) {
	appCfg := &firebase.Config{StorageBucket: cfg.StorageBucket}
	if cfg.ProjectID != "" {
		appCfg.ProjectID = cfg.ProjectID
	}
	return firebase.NewApp(ctx, appCfg, Options()...)
}

// NewClients builds the app, its auth and Firestore clients and, when a
// signing account is set, the IAM credentials client.
func NewClients(ctx context.Context, cfg config.Config) (*Clients, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("missing FIREBASE_PROJECT_ID or GOOGLE_CLOUD_PROJECT")
	}
	app, err := NewApp(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth: %w", err)
	}
	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore: %w", err)
	}

	c := &Clients{App: app, Auth: authClient, Firestore: fs}
	if cfg.SignedURLServiceAccountEmail != "" {
		iam, err := credentials.NewIamCredentialsClient(ctx, Options()...)
		if err != nil {
			_ = fs.Close()
			return nil, fmt.Errorf("iam credentials: %w", err)
		}
		c.IAM = iam
	}
	return c, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Firestore != nil {
		_ = c.Firestore.Close()
	}
	if c.IAM != nil {
		_ = c.IAM.Close()
	}
}
