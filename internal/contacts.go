package internal

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

// LookupContact searches the address book for an exact match on a phone number
// or handle. ABMultiValue property 3 holds phone entries; the value must equal
// the identifier byte-for-byte. No number normalization is attempted, so a
// contact stored as "+15551234567" will not match a handle of "5551234567".
// Returns (nil, nil) when no contact matches; errors mean the store failed.
func LookupContact(addressBook *sql.DB, identifier string) (*Contact, error) {
	var contact Contact
	var first, last sql.NullString

	err := addressBook.QueryRow(`
		SELECT ABPerson.first, ABPerson.last
		FROM ABMultiValue
		JOIN ABPerson ON ABMultiValue.record_id = ABPerson.ROWID
		WHERE ABMultiValue.value = ? AND ABMultiValue.property = 3
	`, identifier).Scan(&first, &last)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup contact %q: %w", identifier, err)
	}

	contact.FirstName = first.String
	contact.LastName = last.String
	return &contact, nil
}

// ContactCache memoizes display labels for the duration of one request. Each
// request constructs its own cache; instances are never shared across requests.
type ContactCache struct {
	addressBook *sql.DB
	labels      map[string]string
}

func NewContactCache(addressBook *sql.DB) *ContactCache {
	return &ContactCache{
		addressBook: addressBook,
		labels:      make(map[string]string),
	}
}

// DisplayLabel returns "First Last (identifier)" when the address book resolves
// the identifier, or the identifier verbatim when it does not. Repeat lookups
// for the same identifier within the request are served from the cache.
func (cc *ContactCache) DisplayLabel(identifier string) (string, error) {
	if identifier == "" {
		// Outgoing messages carry no sender handle; nothing to resolve.
		return "", nil
	}

	if label, ok := cc.labels[identifier]; ok {
		return label, nil
	}

	contact, err := LookupContact(cc.addressBook, identifier)
	if err != nil {
		return "", err
	}

	label := identifier
	if contact != nil {
		name := strings.TrimSpace(contact.FirstName + " " + contact.LastName)
		if name != "" {
			label = fmt.Sprintf("%s (%s)", name, identifier)
		}
	}

	cc.labels[identifier] = label
	slog.Debug("ContactCache: resolved identifier", "identifier", identifier, "label", label)
	return label, nil
}
