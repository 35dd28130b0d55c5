package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cardvault/card-service/internal/core/domain"
	"github.com/cardvault/card-service/internal/core/ports"
)

const collectionCards = "cards"

// cardDoc is the persisted shape of a card. Balances are stored as
// Decimal128 so arithmetic in the database stays exact.
type cardDoc struct {
	ID         string               `bson:"_id"`
	OwnerID    string               `bson:"owner_id"`
	CardNumber string               `bson:"card_number"`
	Last4      string               `bson:"last4"`
	ExpiryDate time.Time            `bson:"expiry_date"`
	Status     string               `bson:"status"`
	Balance    primitive.Decimal128 `bson:"balance"`
}

func toCardDoc(c *domain.Card) (*cardDoc, error) {
	balance, err := toDecimal128(c.Balance)
	if err != nil {
		return nil, err
	}
	return &cardDoc{
		ID:         c.ID,
		OwnerID:    c.OwnerID,
		CardNumber: c.CardNumber,
		Last4:      c.Last4,
		ExpiryDate: c.ExpiryDate.UTC(),
		Status:     string(c.Status),
		Balance:    balance,
	}, nil
}

func (d *cardDoc) toDomain() (*domain.Card, error) {
	balance, err := fromDecimal128(d.Balance)
	if err != nil {
		return nil, err
	}
	return &domain.Card{
		ID:         d.ID,
		OwnerID:    d.OwnerID,
		CardNumber: d.CardNumber,
		Last4:      d.Last4,
		ExpiryDate: d.ExpiryDate,
		Status:     domain.CardStatus(d.Status),
		Balance:    balance,
	}, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("convert decimal: %w", err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("convert decimal128: %w", err)
	}
	return d, nil
}

// CardRepository is the Mongo-backed card store.
type CardRepository struct {
	col *mongo.Collection
}

func NewCardRepository(db *mongo.Database) *CardRepository {
	return &CardRepository{col: db.Collection(collectionCards)}
}

// Create inserts a new card document. The unique index on card_number backs
// the generation-retry loop in the service layer.
func (r *CardRepository) Create(ctx context.Context, card *domain.Card) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toCardDoc(card)
	if err != nil {
		return err
	}
	_, err = r.col.InsertOne(ctx, doc)
	return err
}

func (r *CardRepository) FindByID(ctx context.Context, id string) (*domain.Card, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc cardDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCardNotFound
		}
		return nil, err
	}
	return doc.toDomain()
}

func (r *CardRepository) ExistsByNumber(ctx context.Context, cardNumber string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"card_number": cardNumber}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *CardRepository) UpdateStatus(ctx context.Context, id string, status domain.CardStatus) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": string(status)}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrCardNotFound
	}
	return nil
}

func (r *CardRepository) DeleteByID(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrCardNotFound
	}
	return nil
}

// List returns a page of cards matching the conjunctive filter and the
// total count. User-scoped listings sort by ascending expiry date,
// administrative ones by status.
func (r *CardRepository) List(ctx context.Context, f ports.ListCardsFilter) ([]*domain.Card, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.OwnerID != "" {
		filter["owner_id"] = f.OwnerID
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.Last4 != "" {
		filter["last4"] = f.Last4
	}
	expiry := bson.M{}
	if !f.ExpiryDateFrom.IsZero() {
		expiry["$gte"] = f.ExpiryDateFrom.UTC()
	}
	if !f.ExpiryDateTo.IsZero() {
		expiry["$lte"] = f.ExpiryDateTo.UTC()
	}
	if len(expiry) > 0 {
		filter["expiry_date"] = expiry
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	sortField := "status"
	if f.SortByExpiry {
		sortField = "expiry_date"
	}
	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: 1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var cards []*domain.Card
	for cursor.Next(ctx) {
		var doc cardDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, err
		}
		card, err := doc.toDomain()
		if err != nil {
			return nil, 0, err
		}
		cards = append(cards, card)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

// TransferBalances moves amount between two cards inside a single
// transaction. The debit is one conditional update: it only matches while
// the source card is still ACTIVE with a sufficient balance, so the
// sufficiency re-check and the decrement cannot be split by a concurrent
// transfer. The credit requires the destination to still be ACTIVE. Any
// failed condition aborts the transaction and neither balance changes.
func (r *CardRepository) TransferBalances(ctx context.Context, fromID, toID string, amount decimal.Decimal) error {
	debit, err := toDecimal128(amount.Neg())
	if err != nil {
		return err
	}
	credit, err := toDecimal128(amount)
	if err != nil {
		return err
	}

	session, err := r.col.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		res, err := r.col.UpdateOne(sc,
			bson.M{
				"_id":     fromID,
				"status":  string(domain.StatusActive),
				"balance": bson.M{"$gte": credit},
			},
			bson.M{"$inc": bson.M{"balance": debit}},
		)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, domain.ErrInsufficientFunds
		}

		res, err = r.col.UpdateOne(sc,
			bson.M{"_id": toID, "status": string(domain.StatusActive)},
			bson.M{"$inc": bson.M{"balance": credit}},
		)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, domain.ErrCardNotActive
		}
		return nil, nil
	})
	return err
}

// EnsureIndexes creates the indexes the card collection relies on.
func (r *CardRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "card_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "expiry_date", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
