// Package seed loads the demo data set the server starts with.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/studyhub/studyhub/internal/domain/account"
	"github.com/studyhub/studyhub/internal/domain/activity"
	"github.com/studyhub/studyhub/internal/domain/patient"
	"github.com/studyhub/studyhub/internal/domain/study"
)

//go:embed seed.yaml
var defaultDocument []byte

// Account is a seeded user. Password, when set, is hashed on load.
type Account struct {
	account.User `yaml:",inline"`
	Password     string `yaml:"password"`
}

type Document struct {
	Users    []Account         `yaml:"users"`
	Studies  []study.Study     `yaml:"studies"`
	Patients []patient.Patient `yaml:"patients"`
	Activity []activity.Item   `yaml:"activity"`
}

// Default returns the embedded demo data set.
func Default() (*Document, error) {
	return Parse(defaultDocument)
}

// Load reads the document at path, or the embedded default when path is empty.
func Load(path string) (*Document, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML seed document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &doc, nil
}

// Targets are the stores a document is applied to. Nil targets are skipped.
type Targets struct {
	Accounts *account.Service
	Studies  *study.Service
	Patients *patient.Service
	Feed     *activity.Feed
	// HashCost is the bcrypt cost for plaintext passwords; zero means
	// bcrypt.DefaultCost.
	HashCost int
}

// Apply loads every section of doc into its target.
func Apply(ctx context.Context, doc *Document, t Targets) error {
	if t.Accounts != nil {
		users, err := doc.users(t.HashCost)
		if err != nil {
			return err
		}
		if err := t.Accounts.Seed(ctx, users); err != nil {
			return err
		}
	}
	if t.Studies != nil {
		if err := t.Studies.Seed(ctx, doc.Studies); err != nil {
			return err
		}
	}
	if t.Patients != nil {
		if err := t.Patients.Seed(ctx, doc.Patients); err != nil {
			return err
		}
	}
	if t.Feed != nil {
		for _, it := range doc.Activity {
			t.Feed.Record(it)
		}
	}
	return nil
}

func (d *Document) users(cost int) ([]account.User, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	out := make([]account.User, 0, len(d.Users))
	for _, a := range d.Users {
		u := a.User
		if u.PasswordHash == "" {
			if a.Password == "" {
				return nil, fmt.Errorf("seed user %s: password or passwordHash is required", u.ID)
			}
			h, err := bcrypt.GenerateFromPassword([]byte(a.Password), cost)
			if err != nil {
				return nil, fmt.Errorf("seed user %s: hash password: %w", u.ID, err)
			}
			u.PasswordHash = string(h)
		}
		out = append(out, u)
	}
	return out, nil
}
