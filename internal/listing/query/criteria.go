package query

import (
	"strings"

	"github.com/Dhee091/Housing-Management-sub000/internal/listing/domain"
)

type criteria struct {
	ownerID  string
	term     string
	fields   func(*domain.Listing) []string
	state    string
	city     string
	minRent  *int64
	maxRent  *int64
	minUnits *int
	role     domain.Role
	status   domain.ListingStatus
}

func allSearchFields(l *domain.Listing) []string {
	return []string{l.Title, l.Description, l.Location.City, l.Location.State, l.ListedBy.Name}
}

func ownerSearchFields(l *domain.Listing) []string {
	return []string{l.Title, l.Description}
}

func (c criteria) candidateQuery() domain.CandidateQuery {
	return domain.CandidateQuery{
		OwnerID:           c.ownerID,
		State:             c.state,
		City:              c.city,
		MinRent:           c.minRent,
		MaxRent:           c.maxRent,
		MinUnitsAvailable: c.minUnits,
		Role:              c.role,
		Status:            c.status,
	}
}

func (c criteria) match(l *domain.Listing) bool {
	if !l.IsActive {
		return false
	}
	if c.ownerID != "" && l.ListedBy.ID != c.ownerID {
		return false
	}
	if c.state != "" && l.Location.State != c.state {
		return false
	}
	if c.city != "" && l.Location.City != c.city {
		return false
	}
	if c.minRent != nil && l.Rent < *c.minRent {
		return false
	}
	if c.maxRent != nil && l.Rent > *c.maxRent {
		return false
	}
	if c.minUnits != nil && l.UnitsAvailable < *c.minUnits {
		return false
	}
	if c.role != "" && l.ListedBy.Role != c.role {
		return false
	}
	if c.status != "" && l.Status != c.status {
		return false
	}
	if c.term != "" {
		found := false
		for _, field := range c.fields(l) {
			if strings.Contains(strings.ToLower(field), c.term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
