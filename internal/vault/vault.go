package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrEntryNotFound = errors.New("entry not found")
	ErrEmptySite     = errors.New("entry needs a site identifier")
)

// Entry is a single stored credential. Entries are immutable once
// encrypted; changes replace the whole vault record on the next Save.
type Entry struct {
	Site     string    `json:"site"`
	Username string    `json:"username"`
	Secret   string    `json:"secret"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

// Vault is the in-memory, plaintext entry set. It exists only between a
// successful unlock and the next Save and is never persisted in this form.
type Vault struct {
	entries map[string]Entry
	order   []string
}

// New creates an empty vault
func New() *Vault {
	return &Vault{
		entries: make(map[string]Entry),
	}
}

// Set adds a new entry or replaces an existing one, preserving the
// position of replaced entries
func (v *Vault) Set(site, username, secret string) error {
	if site == "" {
		return ErrEmptySite
	}

	now := time.Now()
	if existing, ok := v.entries[site]; ok {
		existing.Username = username
		existing.Secret = secret
		existing.Modified = now
		v.entries[site] = existing
		return nil
	}

	v.entries[site] = Entry{
		Site:     site,
		Username: username,
		Secret:   secret,
		Created:  now,
		Modified: now,
	}
	v.order = append(v.order, site)
	return nil
}

// Get returns the entry for a site
func (v *Vault) Get(site string) (Entry, error) {
	entry, ok := v.entries[site]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, site)
	}
	return entry, nil
}

// Delete removes the entry for a site
func (v *Vault) Delete(site string) error {
	if _, ok := v.entries[site]; !ok {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, site)
	}
	delete(v.entries, site)
	for i, s := range v.order {
		if s == site {
			v.order = append(v.order[:i], v.order[i+1:]...)
			break
		}
	}
	return nil
}

// Sites lists all site identifiers in insertion order
func (v *Vault) Sites() []string {
	sites := make([]string, len(v.order))
	copy(sites, v.order)
	return sites
}

// Len returns the number of entries
func (v *Vault) Len() int {
	return len(v.entries)
}

// serialize encodes the full entry set as a JSON array in insertion order.
// The caller owns the returned plaintext and must clear it after use.
func (v *Vault) serialize() ([]byte, error) {
	list := make([]Entry, 0, len(v.order))
	for _, site := range v.order {
		list = append(list, v.entries[site])
	}
	data, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize vault: %w", err)
	}
	return data, nil
}

// deserialize rebuilds a vault from serialized entry data
func deserialize(data []byte) (*Vault, error) {
	var list []Entry
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to deserialize vault: %w", err)
	}

	v := New()
	for _, e := range list {
		v.entries[e.Site] = e
		v.order = append(v.order, e.Site)
	}
	return v, nil
}
