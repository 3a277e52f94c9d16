package entity

import (
	"time"

	"nutriflow/internal/domain/docstore"
)

const (
	SubscriptionFree       = "free"
	SubscriptionPremium    = "premium"
	SubscriptionEnterprise = "enterprise"

	SubscriptionActive   = "active"
	SubscriptionInactive = "inactive"
	SubscriptionCanceled = "canceled"
)

// DefaultNotificationSettings are applied to a new profile.
func DefaultNotificationSettings() map[string]bool {
	return map[string]bool{
		"emailNotifications":   true,
		"pushNotifications":    true,
		"appointmentReminders": true,
		"marketingEmails":      false,
		"weeklyReports":        true,
	}
}

// DefaultPrivacySettings are applied to a new profile.
func DefaultPrivacySettings() map[string]bool {
	return map[string]bool{
		"profileVisibility": true,
		"dataSharing":       false,
		"analyticsTracking": true,
	}
}

type Subscription struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

// User is the professional's profile stored at users/{uid}.
type User struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Email                string          `json:"email"`
	CRN                  string          `json:"crn,omitempty"`
	LogoURL              string          `json:"logoUrl,omitempty"`
	WhatsappNumber       string          `json:"whatsappNumber,omitempty"`
	Subscription         *Subscription   `json:"subscription,omitempty"`
	NotificationSettings map[string]bool `json:"notificationSettings,omitempty"`
	PrivacySettings      map[string]bool `json:"privacySettings,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

func UserFromDocument(doc docstore.Document) *User {
	f := Fields(doc.Data)
	user := &User{
		ID:                   doc.ID,
		Name:                 f.String("name"),
		Email:                f.String("email"),
		CRN:                  f.String("crn"),
		LogoURL:              f.String("logoUrl"),
		WhatsappNumber:       f.String("whatsappNumber"),
		NotificationSettings: f.BoolMap("notificationSettings"),
		PrivacySettings:      f.BoolMap("privacySettings"),
		CreatedAt:            f.Time("createdAt"),
		UpdatedAt:            f.Time("updatedAt"),
	}
	if sub := f.Map("subscription"); sub != nil {
		user.Subscription = &Subscription{
			Type:   sub.String("type"),
			Status: sub.String("status"),
		}
	}
	return user
}

func (u *User) Fields() map[string]interface{} {
	m := map[string]interface{}{
		"name":      u.Name,
		"email":     u.Email,
		"createdAt": u.CreatedAt,
		"updatedAt": u.UpdatedAt,
	}
	putIf(m, "crn", u.CRN)
	putIf(m, "logoUrl", u.LogoURL)
	putIf(m, "whatsappNumber", u.WhatsappNumber)
	if u.Subscription != nil {
		m["subscription"] = map[string]interface{}{
			"type":   u.Subscription.Type,
			"status": u.Subscription.Status,
		}
	}
	if u.NotificationSettings != nil {
		m["notificationSettings"] = boolsToAny(u.NotificationSettings)
	}
	if u.PrivacySettings != nil {
		m["privacySettings"] = boolsToAny(u.PrivacySettings)
	}
	return m
}

func boolsToAny(in map[string]bool) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
