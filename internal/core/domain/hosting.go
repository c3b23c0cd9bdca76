package domain

import "time"

// HostingService is a hosting/domain contract tracked for renewal.
type HostingService struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	ClientID  string    `json:"clientId,omitempty"`
	Price     float64   `json:"price,omitempty"`
	Currency  string    `json:"currency,omitempty"`
	StartDate time.Time `json:"startDate,omitempty"`
	EndDate   time.Time `json:"endDate"`
	Notes     string    `json:"notes,omitempty"`
	CreatedBy string    `json:"createdBy"`
	UpdatedBy string    `json:"updatedBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ExpiresWithin reports whether the service ends between now and now+d.
// Already expired services are included.
func (h *HostingService) ExpiresWithin(now time.Time, d time.Duration) bool {
	return !h.EndDate.After(now.Add(d))
}

// DaysRemaining is the whole number of days until EndDate, negative once expired.
func (h *HostingService) DaysRemaining(now time.Time) int {
	return int(h.EndDate.Sub(now).Hours() / 24)
}
