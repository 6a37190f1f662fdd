package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/litmap/litmap/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = goerr.New("record not found")

// Firestore is the Cloud Firestore backed Repository implementation
type Firestore struct {
	client           *firestore.Client
	paper            *paperRepository
	session          *sessionRepository
	collectionPrefix string
	databaseID       string
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes all collection names. Used by tests to
// isolate test data within a shared project.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.collectionPrefix = prefix
	}
}

// WithDatabaseID selects a named Firestore database instead of the default
func WithDatabaseID(databaseID string) Option {
	return func(f *Firestore) {
		f.databaseID = databaseID
	}
}

func New(ctx context.Context, projectID string, opts ...Option) (*Firestore, error) {
	f := &Firestore{}
	for _, opt := range opts {
		opt(f)
	}

	var client *firestore.Client
	var err error
	if f.databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, f.databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("projectID", projectID))
	}

	f.client = client
	f.paper = newPaperRepository(client)
	f.session = newSessionRepository(client)
	f.paper.collectionPrefix = f.collectionPrefix
	f.session.collectionPrefix = f.collectionPrefix

	return f, nil
}

func (f *Firestore) Paper() interfaces.PaperRepository {
	return f.paper
}

func (f *Firestore) Session() interfaces.SessionRepository {
	return f.session
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func (f *Firestore) tokensCollection() string {
	if f.collectionPrefix != "" {
		return f.collectionPrefix + "_tokens"
	}
	return "tokens"
}
