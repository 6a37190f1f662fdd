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

// paperDoc is the Firestore document representation of model.StoredPaper.
// Embedding is stored as firestore.Vector32 so that FindNearest vector
// search works.
type paperDoc struct {
	ID        types.PaperID      `firestore:"ID"`
	Title     string             `firestore:"Title"`
	Summary   string             `firestore:"Summary"`
	URL       string             `firestore:"URL"`
	Published string             `firestore:"Published"`
	Authors   []string           `firestore:"Authors"`
	Embedding firestore.Vector32 `firestore:"Embedding,omitempty"`
	CreatedAt time.Time          `firestore:"CreatedAt"`
	UpdatedAt time.Time          `firestore:"UpdatedAt"`
}

func toPaperDoc(p *model.StoredPaper) *paperDoc {
	doc := &paperDoc{
		ID:        p.ID,
		Title:     p.Title,
		Summary:   p.Summary,
		URL:       p.URL,
		Published: p.Published,
		Authors:   p.Authors,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if len(p.Embedding) > 0 {
		doc.Embedding = firestore.Vector32(p.Embedding)
	}
	return doc
}

func fromPaperDoc(d *paperDoc) *model.StoredPaper {
	p := &model.StoredPaper{
		Paper: model.Paper{
			ID:        d.ID,
			Title:     d.Title,
			Summary:   d.Summary,
			URL:       d.URL,
			Published: d.Published,
			Authors:   d.Authors,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if len(d.Embedding) > 0 {
		p.Embedding = []float32(d.Embedding)
	}
	return p
}

func docToPaper(doc *firestore.DocumentSnapshot) (*model.StoredPaper, error) {
	var d paperDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromPaperDoc(&d), nil
}

type paperRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newPaperRepository(client *firestore.Client) *paperRepository {
	return &paperRepository{
		client: client,
	}
}

func (r *paperRepository) papersCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_papers"
	}
	return "papers"
}

// Upsert writes the paper, preserving the creation timestamp of an
// existing record. Runs in a transaction so concurrent upserts of the
// same paper cannot clobber CreatedAt.
func (r *paperRepository) Upsert(ctx context.Context, paper *model.StoredPaper) error {
	if err := paper.ID.Validate(); err != nil {
		return err
	}

	docRef := r.client.Collection(r.papersCollection()).Doc(paper.ID.String())

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := time.Now().UTC()
		stored := *paper
		stored.CreatedAt = now
		stored.UpdatedAt = now

		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) != codes.NotFound {
				return goerr.Wrap(err, "failed to get existing paper")
			}
		} else {
			existing, err := docToPaper(doc)
			if err != nil {
				return goerr.Wrap(err, "failed to unmarshal existing paper")
			}
			stored.CreatedAt = existing.CreatedAt
		}

		return tx.Set(docRef, toPaperDoc(&stored))
	})
	if err != nil {
		return goerr.Wrap(err, "failed to upsert paper", goerr.V(types.PaperIDKey, paper.ID))
	}

	return nil
}

func (r *paperRepository) Get(ctx context.Context, id types.PaperID) (*model.StoredPaper, error) {
	doc, err := r.client.Collection(r.papersCollection()).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrPaperNotFound, "paper not stored", goerr.V(types.PaperIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get paper", goerr.V(types.PaperIDKey, id))
	}

	p, err := docToPaper(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal paper", goerr.V(types.PaperIDKey, id))
	}

	return p, nil
}

func (r *paperRepository) BatchGet(ctx context.Context, ids []types.PaperID) (map[types.PaperID]*model.StoredPaper, error) {
	result := make(map[types.PaperID]*model.StoredPaper, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, r.client.Collection(r.papersCollection()).Doc(id.String()))
	}

	docs, err := r.client.GetAll(ctx, refs)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to batch get papers")
	}

	for _, doc := range docs {
		if !doc.Exists() {
			continue
		}
		p, err := docToPaper(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal paper", goerr.V(types.PaperIDKey, doc.Ref.ID))
		}
		result[p.ID] = p
	}

	return result, nil
}

func (r *paperRepository) FindByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*model.StoredPaper, error) {
	vq := r.client.Collection(r.papersCollection()).
		FindNearest("Embedding", firestore.Vector32(embedding), limit, firestore.DistanceMeasureCosine, nil)

	iter := vq.Documents(ctx)
	defer iter.Stop()

	papers := make([]*model.StoredPaper, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate vector search results")
		}

		p, err := docToPaper(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal paper from vector search")
		}

		papers = append(papers, p)
	}

	return papers, nil
}
