package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"lifenotes-backend-go/internal/models"
)

// firestoreUserRepository implements the UserRepository interface using Firestore.
// The normalized email is the document ID, so one email maps to at most one document.
type firestoreUserRepository struct {
	client *firestore.Client
}

// userDocID checks that email can serve as a document ID. Firestore IDs cannot
// contain "/", be "." or "..", or match __.*__; no user document can exist
// under such an email, so lookups report ErrNotFound.
func userDocID(email string) (string, error) {
	switch {
	case email == "":
		return "", fmt.Errorf("empty email: %w", ErrNotFound)
	case strings.Contains(email, "/"), email == ".", email == "..",
		len(email) >= 4 && strings.HasPrefix(email, "__") && strings.HasSuffix(email, "__"):
		return "", fmt.Errorf("email '%s' is not a valid document ID: %w", email, ErrNotFound)
	}
	return email, nil
}

func (r *firestoreUserRepository) doc(email string) (*firestore.DocumentRef, error) {
	id, err := userDocID(email)
	if err != nil {
		return nil, err
	}
	return r.client.Collection(usersCollection).Doc(id), nil
}

// NewFirestoreUserRepository creates a new instance of firestoreUserRepository.
func NewFirestoreUserRepository(client *firestore.Client) UserRepository {
	if client == nil {
		panic("Firestore client is not initialized for UserRepository")
	}
	return &firestoreUserRepository{client: client}
}

// List returns every user profile.
func (r *firestoreUserRepository) List(ctx context.Context) ([]*models.User, error) {
	iter := r.client.Collection(usersCollection).Documents(ctx)
	defer iter.Stop()

	users := make([]*models.User, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate users: %w", err)
		}
		var user models.User
		if err := doc.DataTo(&user); err != nil {
			return nil, fmt.Errorf("failed to decode user data for ID '%s': %w", doc.Ref.ID, err)
		}
		user.ID = doc.Ref.ID
		users = append(users, &user)
	}
	return users, nil
}

// GetByEmail retrieves a user document by email.
func (r *firestoreUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ref, err := r.doc(email)
	if err != nil {
		return nil, err
	}
	docSnap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("user '%s' not found: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user '%s': %w", email, err)
	}

	var user models.User
	if err := docSnap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user data for '%s': %w", email, err)
	}
	user.ID = docSnap.Ref.ID
	return &user, nil
}

// Upsert creates or refreshes a profile inside a transaction.
func (r *firestoreUserRepository) Upsert(ctx context.Context, user *models.User) (bool, error) {
	ref, err := r.doc(user.Email)
	if err != nil {
		return false, fmt.Errorf("cannot upsert user: %w", err)
	}

	var created bool
	err = r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		created = false
		_, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			created = true
			return tx.Create(ref, user)
		}
		if err != nil {
			return err
		}

		updates := []firestore.Update{{Path: "updatedAt", Value: user.UpdatedAt}}
		if user.Name != "" {
			updates = append(updates, firestore.Update{Path: "name", Value: user.Name})
		}
		if user.PhotoURL != "" {
			updates = append(updates, firestore.Update{Path: "photoURL", Value: user.PhotoURL})
		}
		return tx.Update(ref, updates)
	})
	if err != nil {
		return false, fmt.Errorf("failed to upsert user '%s': %w", user.Email, err)
	}
	user.ID = ref.ID
	return created, nil
}

// Update overwrites the given fields of an existing user.
func (r *firestoreUserRepository) Update(ctx context.Context, email string, fields map[string]interface{}) error {
	ref, err := r.doc(email)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return errors.New("no fields to update")
	}
	_, err = ref.Update(ctx, toFirestoreUpdates(fields))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("user '%s' not found for update: %w", email, ErrNotFound)
		}
		return fmt.Errorf("failed to update user '%s': %w", email, err)
	}
	return nil
}

// SetPremium marks the user premium once.
func (r *firestoreUserRepository) SetPremium(ctx context.Context, email, sessionID string, at time.Time) (bool, error) {
	ref, err := r.doc(email)
	if err != nil {
		return false, err
	}

	var changed bool
	err = r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		changed = false
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		premium, err := snap.DataAt("isPremium")
		if err == nil {
			if already, ok := premium.(bool); ok && already {
				return nil
			}
		}
		changed = true
		return tx.Update(ref, []firestore.Update{
			{Path: "isPremium", Value: true},
			{Path: "premiumSince", Value: at},
			{Path: "paymentSessionId", Value: sessionID},
			{Path: "updatedAt", Value: at},
		})
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, fmt.Errorf("user '%s' not found for premium upgrade: %w", email, ErrNotFound)
		}
		return false, fmt.Errorf("failed to set premium for user '%s': %w", email, err)
	}
	return changed, nil
}
