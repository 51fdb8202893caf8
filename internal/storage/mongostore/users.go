package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Vasu1712/hushgroup-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userDoc struct {
	ID        string    `bson:"_id"`
	Username  string    `bson:"username"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// UserDirectory implements identity.Directory on MongoDB. Display names live
// in the users collection; group sets are read from the groups collection's
// member lists.
type UserDirectory struct {
	users  *mongo.Collection
	groups *mongo.Collection
}

func NewUserDirectory(db *mongo.Database) *UserDirectory {
	return &UserDirectory{
		users:  db.Collection("users"),
		groups: db.Collection("groups"),
	}
}

func (d *UserDirectory) Remember(ctx context.Context, userID, username string) error {
	_, err := d.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"username": username, "updated_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

// DisplayNames maps every requested id to its name, "" when unknown.
func (d *UserDirectory) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		names[id] = ""
	}
	if len(ids) == 0 {
		return names, nil
	}

	cur, err := d.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("finding users: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding users: %w", err)
	}
	for _, doc := range docs {
		names[doc.ID] = doc.Username
	}
	return names, nil
}

// AddGroup only makes sure the user document exists; the membership itself is
// already in the group's member list.
func (d *UserDirectory) AddGroup(ctx context.Context, userID string, _ models.GroupRef) error {
	_, err := d.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$setOnInsert": bson.M{"username": "", "updated_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

// User returns the display name and the user's groups, oldest group first.
func (d *UserDirectory) User(ctx context.Context, userID string) (models.User, error) {
	u := models.User{ID: userID, Groups: []models.GroupRef{}}

	var doc userDoc
	err := d.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, fmt.Errorf("finding user: %w", err)
	}
	u.Username = doc.Username

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"members": 0})
	cur, err := d.groups.Find(ctx, bson.M{"members": userID}, opts)
	if err != nil {
		return models.User{}, fmt.Errorf("finding user groups: %w", err)
	}
	var groups []groupDoc
	if err := cur.All(ctx, &groups); err != nil {
		return models.User{}, fmt.Errorf("decoding user groups: %w", err)
	}
	for _, g := range groups {
		u.Groups = append(u.Groups, models.GroupRef{ID: g.ID, Name: g.Name, InviteCode: g.InviteCode})
	}
	return u, nil
}
