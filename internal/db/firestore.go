package db

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"lifenotes-backend-go/internal/config"
)

// NewFirestoreClient initializes the Firebase Admin SDK and returns its Firestore client.
// Credentials come from a service account file, a base64 encoded service
// account JSON, or Application Default Credentials, in that order.
func NewFirestoreClient(ctx context.Context, appConfig *config.Config, logger *zap.Logger) (*firestore.Client, error) {
	if appConfig == nil {
		return nil, fmt.Errorf("NewFirestoreClient: appConfig cannot be nil")
	}

	var credsOption option.ClientOption
	switch {
	case appConfig.GoogleApplicationCredentials != "":
		logger.Info("Initializing Firebase with credentials file", zap.String("path", appConfig.GoogleApplicationCredentials))
		if _, err := os.Stat(appConfig.GoogleApplicationCredentials); os.IsNotExist(err) {
			// ADC may still be configured independently, so this is not fatal here.
			logger.Warn("Credentials file from GOOGLE_APPLICATION_CREDENTIALS does not exist",
				zap.String("path", appConfig.GoogleApplicationCredentials))
		}
		credsOption = option.WithCredentialsFile(appConfig.GoogleApplicationCredentials)
	case appConfig.FirebaseServiceAccountJSONBase64 != "":
		logger.Info("Initializing Firebase with base64 encoded service account JSON")
		decodedJSON, err := base64.StdEncoding.DecodeString(appConfig.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode FIREBASE_SERVICE_ACCOUNT_JSON_BASE64: %w", err)
		}
		credsOption = option.WithCredentialsJSON(decodedJSON)
	default:
		logger.Info("Initializing Firebase using Application Default Credentials")
	}

	firebaseAppConfig := &firebase.Config{ProjectID: appConfig.FirebaseProjectID}

	var opts []option.ClientOption
	if credsOption != nil {
		opts = append(opts, credsOption)
	}
	app, err := firebase.NewApp(ctx, firebaseAppConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("app.Firestore: %w", err)
	}
	logger.Info("Firestore client initialized", zap.String("projectID", appConfig.FirebaseProjectID))
	return client, nil
}

// NewFirestoreStore wires every repository to one Firestore client.
// Closing the store closes the client.
func NewFirestoreStore(client *firestore.Client) *Store {
	return &Store{
		Lessons:  NewFirestoreLessonRepository(client),
		Users:    NewFirestoreUserRepository(client),
		Reports:  NewFirestoreReportRepository(client),
		Payments: NewFirestorePaymentRepository(client),
		closeFn: func(context.Context) error {
			return client.Close()
		},
	}
}
