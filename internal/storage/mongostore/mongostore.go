// Package mongostore implements the group and message repositories on MongoDB.
// Each group is one document holding its member list, so joining is a single
// atomic conditional update.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Vasu1712/hushgroup-backend/internal/models"
	"github.com/Vasu1712/hushgroup-backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect opens a client and checks the server is reachable.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the unique invite code index and the lookup indexes.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("groups").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "invite_code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "members", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("creating group indexes: %w", err)
	}
	_, err = db.Collection("messages").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "receiver_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("creating message indexes: %w", err)
	}
	return nil
}

type groupDoc struct {
	ID         string    `bson:"_id"`
	Name       string    `bson:"name"`
	InviteCode string    `bson:"invite_code"`
	Members    []string  `bson:"members"`
	CreatedBy  string    `bson:"created_by"`
	CreatedAt  time.Time `bson:"created_at"`
}

func (d groupDoc) toModel() models.Group {
	return models.Group{
		ID:         d.ID,
		Name:       d.Name,
		InviteCode: d.InviteCode,
		Members:    d.Members,
		CreatedBy:  d.CreatedBy,
		CreatedAt:  d.CreatedAt.UTC(),
	}
}

type GroupStore struct {
	c *mongo.Collection
}

func NewGroupStore(db *mongo.Database) *GroupStore {
	return &GroupStore{c: db.Collection("groups")}
}

func (s *GroupStore) InsertGroup(ctx context.Context, group models.Group) error {
	_, err := s.c.InsertOne(ctx, groupDoc{
		ID:         group.ID,
		Name:       group.Name,
		InviteCode: group.InviteCode,
		Members:    group.Members,
		CreatedBy:  group.CreatedBy,
		CreatedAt:  group.CreatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return storage.ErrDuplicateInviteCode
	}
	if err != nil {
		return fmt.Errorf("inserting group: %w", err)
	}
	return nil
}

// AddMemberByCode pushes userID only when it is not already in members. The
// filter and the push are evaluated together by the server.
func (s *GroupStore) AddMemberByCode(ctx context.Context, code, userID string) (models.Group, error) {
	filter := bson.M{"invite_code": code, "members": bson.M{"$ne": userID}}
	update := bson.M{"$push": bson.M{"members": userID}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc groupDoc
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		n, err := s.c.CountDocuments(ctx, bson.M{"invite_code": code})
		if err != nil {
			return models.Group{}, fmt.Errorf("checking invite code: %w", err)
		}
		if n == 0 {
			return models.Group{}, storage.ErrGroupNotFound
		}
		return models.Group{}, storage.ErrAlreadyMember
	}
	if err != nil {
		return models.Group{}, fmt.Errorf("joining group: %w", err)
	}
	return doc.toModel(), nil
}

func (s *GroupStore) GroupByID(ctx context.Context, id string) (models.Group, error) {
	var doc groupDoc
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Group{}, storage.ErrGroupNotFound
	}
	if err != nil {
		return models.Group{}, fmt.Errorf("finding group: %w", err)
	}
	return doc.toModel(), nil
}

func (s *GroupStore) GroupsByIDs(ctx context.Context, ids []string) (map[string]models.Group, error) {
	found := make(map[string]models.Group, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	opts := options.Find().SetProjection(bson.M{"members": 0})
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("finding groups: %w", err)
	}
	var docs []groupDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding groups: %w", err)
	}
	for _, d := range docs {
		found[d.ID] = d.toModel()
	}
	return found, nil
}

func (s *GroupStore) GroupsForUser(ctx context.Context, userID string) ([]models.GroupSummary, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"members": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("finding groups for user: %w", err)
	}
	var docs []groupDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding groups for user: %w", err)
	}

	summaries := make([]models.GroupSummary, 0, len(docs))
	for _, d := range docs {
		summaries = append(summaries, models.GroupSummary{
			ID:          d.ID,
			Name:        d.Name,
			InviteCode:  d.InviteCode,
			MemberCount: len(d.Members),
			CreatedAt:   d.CreatedAt.UTC(),
		})
	}
	return summaries, nil
}

type MessageStore struct {
	c *mongo.Collection
}

func NewMessageStore(db *mongo.Database) *MessageStore {
	return &MessageStore{c: db.Collection("messages")}
}

func (s *MessageStore) InsertMessage(ctx context.Context, msg models.Message) error {
	if _, err := s.c.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	return nil
}

func (s *MessageStore) MessagesForReceiver(ctx context.Context, receiverID string) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"receiver_id": receiverID}, opts)
	if err != nil {
		return nil, fmt.Errorf("finding messages: %w", err)
	}
	msgs := []models.Message{}
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, fmt.Errorf("decoding messages: %w", err)
	}
	for i := range msgs {
		msgs[i].CreatedAt = msgs[i].CreatedAt.UTC()
	}
	return msgs, nil
}
