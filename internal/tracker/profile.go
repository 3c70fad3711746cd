package tracker

import (
	"context"
	"strings"

	"github.com/pathakanu/myPlants/internal/model"
)

// ProfileInput carries the user's editable contact details.
type ProfileInput struct {
	Email          string `json:"email"`
	FullName       string `json:"full_name"`
	WhatsAppNumber string `json:"whatsapp_number"`
}

// Profile returns the user's profile.
func (s *Service) Profile(ctx context.Context, userID string) (*model.Profile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, storeErr("get profile", err)
	}
	return p, nil
}

// UpdateProfile creates or replaces the user's profile.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*model.Profile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(in.Email)
	if email != "" && !strings.Contains(email, "@") {
		return nil, invalid("email", "must be an email address")
	}

	now := s.now().UTC()
	p := &model.Profile{
		UserID:         userID,
		Email:          email,
		FullName:       strings.TrimSpace(in.FullName),
		WhatsAppNumber: NormalizePhone(in.WhatsAppNumber),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.UpsertProfile(ctx, p); err != nil {
		return nil, storeErr("upsert profile", err)
	}
	return s.Profile(ctx, userID)
}

// UserByWhatsApp resolves a WhatsApp sender to a user id.
func (s *Service) UserByWhatsApp(ctx context.Context, number string) (string, error) {
	number = NormalizePhone(number)
	if number == "" {
		return "", ErrUnauthenticated
	}
	p, err := s.store.FindProfileByWhatsApp(ctx, number)
	if err != nil {
		return "", storeErr("find profile", err)
	}
	return p.UserID, nil
}

// NormalizePhone strips the whatsapp: scheme and spacing and ensures a leading +.
func NormalizePhone(number string) string {
	trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(number), "whatsapp:"))
	trimmed = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(trimmed)
	if trimmed == "" {
		return ""
	}
	if !strings.HasPrefix(trimmed, "+") {
		trimmed = "+" + trimmed
	}
	return trimmed
}
