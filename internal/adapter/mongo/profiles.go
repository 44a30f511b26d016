package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"meowscale/internal/domain"
)

// GetProfile loads a profile by user ID.
func (s *Store) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var p domain.UserProfile
	if err := s.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&p); err != nil {
		return nil, notFound("get profile", err)
	}
	return &p, nil
}

// CreateProfile inserts p. An existing document with the same ID is replaced.
func (s *Store) CreateProfile(ctx context.Context, p *domain.UserProfile) error {
	_, err := s.users.ReplaceOne(ctx, bson.M{"_id": p.ID}, p, options.Replace().SetUpsert(true))
	return domain.StoreFailure("create profile", err)
}

// UpdateProfile applies u with a single $set.
func (s *Store) UpdateProfile(ctx context.Context, userID string, u domain.ProfileUpdate) error {
	set := profileSet(u)
	if len(set) == 0 {
		_, err := s.GetProfile(ctx, userID)
		return err
	}
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": set})
	if err != nil {
		return domain.StoreFailure("update profile", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FindProfileByInviteCode looks a profile up by its partner code.
func (s *Store) FindProfileByInviteCode(ctx context.Context, code string) (*domain.UserProfile, error) {
	var p domain.UserProfile
	if err := s.users.FindOne(ctx, bson.M{"partnerCode": code}).Decode(&p); err != nil {
		return nil, notFound("find profile by code", err)
	}
	return &p, nil
}

// DeleteProfile removes a profile. Weight documents are kept.
func (s *Store) DeleteProfile(ctx context.Context, userID string) error {
	res, err := s.users.DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		return domain.StoreFailure("delete profile", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListReminderProfiles returns every profile with reminders switched on.
func (s *Store) ListReminderProfiles(ctx context.Context) ([]domain.UserProfile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.users.Find(ctx, bson.M{"reminderEnabled": true}, opts)
	if err != nil {
		return nil, domain.StoreFailure("list reminder profiles", err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var out []domain.UserProfile
	if err := cursor.All(ctx, &out); err != nil {
		return nil, domain.StoreFailure("list reminder profiles", err)
	}
	return out, nil
}

// profileSet translates a merge patch into $set fields. Cleared optional
// fields are written as null.
func profileSet(u domain.ProfileUpdate) bson.M {
	set := bson.M{}
	if u.DisplayName != nil {
		set["displayName"] = *u.DisplayName
	}
	if u.Height != nil {
		set["height"] = *u.Height
	}
	if u.Gender != nil {
		set["gender"] = *u.Gender
	}
	if u.PartnerUID != nil {
		if *u.PartnerUID == "" {
			set["partnerUid"] = nil
		} else {
			set["partnerUid"] = *u.PartnerUID
		}
	}
	if u.TargetWeight != nil {
		if *u.TargetWeight == 0 {
			set["targetWeight"] = nil
		} else {
			set["targetWeight"] = *u.TargetWeight
		}
	}
	if u.ReminderEnabled != nil {
		set["reminderEnabled"] = *u.ReminderEnabled
	}
	if u.ReminderTime != nil {
		set["reminderTime"] = *u.ReminderTime
	}
	if u.Timezone != nil {
		set["timezone"] = *u.Timezone
	}
	if u.Theme != nil {
		set["theme"] = *u.Theme
	}
	return set
}
