package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bookhaven/library-system/internal/core/domain"
)

const paymentsCollection = "payments"

// PaymentRepository implements ports.PaymentRepository using MongoDB.
//
// The sessionId index is deliberately non-unique: replay protection is the
// service's duplicate-check read, not a storage constraint.
type PaymentRepository struct {
	col *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{col: db.Collection(paymentsCollection)}
}

type paymentDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	SessionID   string             `bson:"sessionId"`
	OrderID     string             `bson:"orderId"`
	UserEmail   string             `bson:"userEmail"`
	AmountCents int64              `bson:"amountCents"`
	Currency    string             `bson:"currency"`
	Provider    string             `bson:"provider"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d *paymentDoc) toDomain() *domain.Payment {
	return &domain.Payment{
		ID:          d.ID.Hex(),
		SessionID:   d.SessionID,
		OrderID:     d.OrderID,
		UserEmail:   d.UserEmail,
		AmountCents: d.AmountCents,
		Currency:    d.Currency,
		Provider:    d.Provider,
		CreatedAt:   d.CreatedAt,
	}
}

func (r *PaymentRepository) Insert(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := paymentDoc{
		SessionID:   p.SessionID,
		OrderID:     p.OrderID,
		UserEmail:   p.UserEmail,
		AmountCents: p.AmountCents,
		Currency:    p.Currency,
		Provider:    p.Provider,
		CreatedAt:   p.CreatedAt.UTC(),
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}

	created := *p
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *PaymentRepository) FindBySessionID(ctx context.Context, sessionID string) (*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc paymentDoc
	if err := r.col.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *PaymentRepository) ListByEmail(ctx context.Context, email string) ([]*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"userEmail": email}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer cur.Close(ctx)

	var payments []*domain.Payment
	for cur.Next(ctx) {
		var doc paymentDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode payment: %w", err)
		}
		payments = append(payments, doc.toDomain())
	}
	return payments, cur.Err()
}

// EnsureIndexes creates lookup indexes on the payments collection.
func (r *PaymentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "sessionId", Value: 1}}},
		{Keys: bson.D{{Key: "userEmail", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
