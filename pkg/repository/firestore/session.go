package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/litmap/litmap/pkg/domain/model"
	"github.com/litmap/litmap/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type sessionDoc struct {
	ID             types.SessionID     `firestore:"ID"`
	UserID         types.UserID        `firestore:"UserID"`
	Title          string              `firestore:"Title"`
	SeedID         types.PaperID       `firestore:"SeedID"`
	Mode           types.DiscoveryMode `firestore:"Mode"`
	PartialData    bool                `firestore:"PartialData"`
	DiscoveryError string              `firestore:"DiscoveryError"`
	CreatedAt      time.Time           `firestore:"CreatedAt"`
	LastAccessedAt time.Time           `firestore:"LastAccessedAt"`
}

type sessionPaperDoc struct {
	SessionID types.SessionID `firestore:"SessionID"`
	PaperID   types.PaperID   `firestore:"PaperID"`
	Position  int             `firestore:"Position"`
	IsSeed    bool            `firestore:"IsSeed"`
	AddedAt   time.Time       `firestore:"AddedAt"`
}

func toSessionDoc(s *model.Session) *sessionDoc {
	return &sessionDoc{
		ID:             s.ID,
		UserID:         s.UserID,
		Title:          s.Title,
		SeedID:         s.SeedID,
		Mode:           s.Mode,
		PartialData:    s.PartialData,
		DiscoveryError: s.DiscoveryError,
		CreatedAt:      s.CreatedAt,
		LastAccessedAt: s.LastAccessedAt,
	}
}

func fromSessionDoc(d *sessionDoc) *model.Session {
	return &model.Session{
		ID:             d.ID,
		UserID:         d.UserID,
		Title:          d.Title,
		SeedID:         d.SeedID,
		Mode:           d.Mode,
		PartialData:    d.PartialData,
		DiscoveryError: d.DiscoveryError,
		CreatedAt:      d.CreatedAt,
		LastAccessedAt: d.LastAccessedAt,
	}
}

func docToSession(doc *firestore.DocumentSnapshot) (*model.Session, error) {
	var d sessionDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromSessionDoc(&d), nil
}

type sessionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newSessionRepository(client *firestore.Client) *sessionRepository {
	return &sessionRepository{
		client: client,
	}
}

func (r *sessionRepository) sessionsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_sessions"
	}
	return "sessions"
}

func (r *sessionRepository) sessionRef(id types.SessionID) *firestore.DocumentRef {
	return r.client.Collection(r.sessionsCollection()).Doc(id.String())
}

func (r *sessionRepository) papersSubcollection(id types.SessionID) *firestore.CollectionRef {
	return r.sessionRef(id).Collection("papers")
}

func sessionNotFoundErr(id types.SessionID) error {
	return goerr.Wrap(types.ErrSessionNotFound, "session not stored", goerr.V(types.SessionIDKey, id))
}

// getOwnedTx reads the session inside the transaction and verifies
// ownership. A session owned by another user is reported as not found.
func (r *sessionRepository) getOwnedTx(tx *firestore.Transaction, id types.SessionID, userID types.UserID) (*model.Session, error) {
	doc, err := tx.Get(r.sessionRef(id))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, sessionNotFoundErr(id)
		}
		return nil, goerr.Wrap(err, "failed to get session", goerr.V(types.SessionIDKey, id))
	}

	session, err := docToSession(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal session", goerr.V(types.SessionIDKey, id))
	}
	if session.UserID != userID {
		return nil, sessionNotFoundErr(id)
	}

	return session, nil
}

func (r *sessionRepository) Create(ctx context.Context, session *model.Session, papers []*model.SessionPaper) error {
	if err := session.ID.Validate(); err != nil {
		return err
	}
	if err := session.UserID.Validate(); err != nil {
		return err
	}

	// A transaction keeps the session document and its membership rows
	// all-or-nothing.
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Set(r.sessionRef(session.ID), toSessionDoc(session)); err != nil {
			return err
		}
		for _, p := range papers {
			docRef := r.papersSubcollection(session.ID).Doc(p.PaperID.String())
			if err := tx.Set(docRef, &sessionPaperDoc{
				SessionID: p.SessionID,
				PaperID:   p.PaperID,
				Position:  p.Position,
				IsSeed:    p.IsSeed,
				AddedAt:   p.AddedAt,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create session", goerr.V(types.SessionIDKey, session.ID))
	}

	return nil
}

func (r *sessionRepository) ListByUser(ctx context.Context, userID types.UserID) ([]*model.Session, error) {
	iter := r.client.Collection(r.sessionsCollection()).
		Where("UserID", "==", userID.String()).
		OrderBy("LastAccessedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	sessions := make([]*model.Session, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate sessions", goerr.V(types.UserIDKey, userID))
		}

		s, err := docToSession(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal session")
		}

		sessions = append(sessions, s)
	}

	return sessions, nil
}

func (r *sessionRepository) GetAndTouch(ctx context.Context, id types.SessionID, userID types.UserID) (*model.Session, error) {
	var session *model.Session

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		s, err := r.getOwnedTx(tx, id, userID)
		if err != nil {
			return err
		}

		s.LastAccessedAt = time.Now().UTC()
		session = s
		return tx.Update(r.sessionRef(id), []firestore.Update{
			{Path: "LastAccessedAt", Value: s.LastAccessedAt},
		})
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

func (r *sessionRepository) ListPapers(ctx context.Context, id types.SessionID) ([]*model.SessionPaper, error) {
	iter := r.papersSubcollection(id).
		OrderBy("Position", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	papers := make([]*model.SessionPaper, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate session papers", goerr.V(types.SessionIDKey, id))
		}

		var d sessionPaperDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal session paper")
		}

		papers = append(papers, &model.SessionPaper{
			SessionID: d.SessionID,
			PaperID:   d.PaperID,
			Position:  d.Position,
			IsSeed:    d.IsSeed,
			AddedAt:   d.AddedAt,
		})
	}

	return papers, nil
}

func (r *sessionRepository) UpdateTitle(ctx context.Context, id types.SessionID, userID types.UserID, title string) error {
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := r.getOwnedTx(tx, id, userID); err != nil {
			return err
		}
		return tx.Update(r.sessionRef(id), []firestore.Update{
			{Path: "Title", Value: title},
		})
	})
}

func (r *sessionRepository) Delete(ctx context.Context, id types.SessionID, userID types.UserID) error {
	// Membership rows are read outside the transaction; sessions are
	// immutable after creation so the set cannot change underneath.
	paperRefs := make([]*firestore.DocumentRef, 0)
	iter := r.papersSubcollection(id).Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to list session papers for delete", goerr.V(types.SessionIDKey, id))
		}
		paperRefs = append(paperRefs, doc.Ref)
	}

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := r.getOwnedTx(tx, id, userID); err != nil {
			return err
		}
		for _, ref := range paperRefs {
			if err := tx.Delete(ref); err != nil {
				return err
			}
		}
		return tx.Delete(r.sessionRef(id))
	})
}
