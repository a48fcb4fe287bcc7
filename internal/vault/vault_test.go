package vault

import (
	"errors"
	"testing"
)

func TestSetGetDelete(t *testing.T) {
	v := New()

	if err := v.Set("example.com", "alice", "s3cr3t"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := v.Set("other.org", "bob", "hunter2"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	entry, err := v.Get("example.com")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if entry.Username != "alice" || entry.Secret != "s3cr3t" {
		t.Errorf("Unexpected entry: %+v", entry)
	}
	if entry.Created.IsZero() || entry.Modified.IsZero() {
		t.Error("Timestamps should be set")
	}

	if err := v.Delete("example.com"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := v.Get("example.com"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Expected ErrEntryNotFound after delete, got %v", err)
	}
	if err := v.Delete("example.com"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Expected ErrEntryNotFound for double delete, got %v", err)
	}
}

func TestSetUpdatesInPlace(t *testing.T) {
	v := New()
	v.Set("a.com", "u1", "s1")
	v.Set("b.com", "u2", "s2")
	v.Set("c.com", "u3", "s3")

	created, _ := v.Get("b.com")
	if err := v.Set("b.com", "u2-new", "s2-new"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	entry, _ := v.Get("b.com")
	if entry.Username != "u2-new" || entry.Secret != "s2-new" {
		t.Errorf("Update not applied: %+v", entry)
	}
	if !entry.Created.Equal(created.Created) {
		t.Error("Update should preserve creation time")
	}

	sites := v.Sites()
	want := []string{"a.com", "b.com", "c.com"}
	for i, s := range want {
		if sites[i] != s {
			t.Fatalf("Order changed on update: %v", sites)
		}
	}
}

func TestSetEmptySite(t *testing.T) {
	v := New()
	if err := v.Set("", "user", "secret"); !errors.Is(err, ErrEmptySite) {
		t.Errorf("Expected ErrEmptySite, got %v", err)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	v := New()
	v.Set("first.com", "u1", "s1")
	v.Set("second.com", "u2", "s2")
	v.Set("third.com", "u3", "s3")
	v.Delete("second.com")

	data, err := v.serialize()
	if err != nil {
		t.Fatalf("serialize failed: %v", err)
	}

	got, err := deserialize(data)
	if err != nil {
		t.Fatalf("deserialize failed: %v", err)
	}

	if got.Len() != 2 {
		t.Fatalf("Expected 2 entries, got %d", got.Len())
	}
	sites := got.Sites()
	if sites[0] != "first.com" || sites[1] != "third.com" {
		t.Errorf("Order not preserved: %v", sites)
	}
	entry, err := got.Get("third.com")
	if err != nil {
		t.Fatalf("Get after round trip failed: %v", err)
	}
	if entry.Username != "u3" || entry.Secret != "s3" {
		t.Errorf("Entry mangled in round trip: %+v", entry)
	}
}
