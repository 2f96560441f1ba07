package firebase

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"github.com/GoSim-25-26J-441/lock-sweeper/config"
)

const datastoreScope = "https://www.googleapis.com/auth/datastore"

// NewFirestore initializes the Firebase Admin SDK and returns a Firestore client.
// Without a credentials file it falls back to Application Default Credentials,
// and against the emulator it connects without authentication.
func NewFirestore(ctx context.Context, cfg *config.FirebaseConfig) (*firestore.Client, error) {
	opts, err := clientOptions(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var appConfig *firebase.Config
	if cfg.ProjectID != "" {
		appConfig = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, appConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Firestore client: %w", err)
	}

	return client, nil
}

func clientOptions(ctx context.Context, cfg *config.FirebaseConfig) ([]option.ClientOption, error) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") != "" {
		if cfg.ProjectID == "" {
			return nil, fmt.Errorf("FIREBASE_PROJECT_ID is required when FIRESTORE_EMULATOR_HOST is set")
		}
		return []option.ClientOption{option.WithoutAuthentication()}, nil
	}

	if cfg.CredentialsPath != "" {
		return []option.ClientOption{option.WithCredentialsFile(cfg.CredentialsPath)}, nil
	}

	creds, err := google.FindDefaultCredentials(ctx, datastoreScope)
	if err != nil {
		return nil, fmt.Errorf("FIREBASE_CREDENTIALS_PATH is not set and no default credentials were found: %w", err)
	}
	if cfg.ProjectID == "" && creds.ProjectID != "" {
		cfg.ProjectID = creds.ProjectID
	}

	return []option.ClientOption{option.WithCredentials(creds)}, nil
}
