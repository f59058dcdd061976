package emergency

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mindwell-lab/serene/pkg/domain/model/emergency"
	"github.com/mindwell-lab/serene/pkg/domain/model/errs"
	"github.com/mindwell-lab/serene/pkg/utils/logging"
)

// Service owns the emergency contact directory and renders the final crisis
// message text. The conversation core only decides that a crisis message
// must be shown; the exact wording comes from here.
type Service struct {
	mu       sync.RWMutex
	path     string
	contacts []emergency.Contact
	msgCfg   emergency.MessageConfig
}

type fileFormat struct {
	Contacts      []emergency.Contact      `json:"contacts"`
	MessageConfig *emergency.MessageConfig `json:"crisis_message_config,omitempty"`
}

// New creates the service with built-in defaults. When path is non-empty
// and the file exists, its contents replace the defaults; a missing file is
// not an error (it is created on first Save).
func New(ctx context.Context, path string) (*Service, error) {
	x := &Service{
		path:   path,
		msgCfg: defaultMessageConfig(),
	}

	if path == "" {
		return x, nil
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logging.From(ctx).Info("emergency resource file not found, using built-in fallbacks", "path", path)
		return x, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read emergency resources", goerr.V("path", path))
	}

	var data fileFormat
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, goerr.Wrap(err, "failed to parse emergency resources",
			goerr.T(errs.TagValidation), goerr.V("path", path))
	}

	x.contacts = data.Contacts
	if data.MessageConfig != nil {
		x.msgCfg = *data.MessageConfig
	}
	return x, nil
}

// Save writes the current directory back to the configured file. Without a
// configured file the directory is memory-only and Save is a no-op.
func (x *Service) Save(ctx context.Context) error {
	x.mu.RLock()
	data := fileFormat{
		Contacts:      append([]emergency.Contact(nil), x.contacts...),
		MessageConfig: &x.msgCfg,
	}
	path := x.path
	x.mu.RUnlock()

	if path == "" {
		return nil
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to encode emergency resources")
	}
	if err := os.WriteFile(path, raw, 0600); err != nil {
		return goerr.Wrap(err, "failed to write emergency resources", goerr.V("path", path))
	}
	return nil
}

func (x *Service) AddContact(contact emergency.Contact) error {
	if contact.Name == "" || contact.Number == "" || contact.Country == "" {
		return goerr.New("contact requires name, number and country",
			goerr.T(errs.TagValidation))
	}
	if !contact.Type.Validate() {
		return goerr.New("unknown resource type",
			goerr.T(errs.TagValidation), goerr.V("resource_type", contact.Type))
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.contacts = append(x.contacts, contact)
	return nil
}

// RemoveContact deletes by name and country. Returns false when no entry
// matched.
func (x *Service) RemoveContact(name, country string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	kept := x.contacts[:0]
	removed := false
	for _, c := range x.contacts {
		if strings.EqualFold(c.Name, name) && strings.EqualFold(c.Country, country) {
			removed = true
			continue
		}
		kept = append(kept, c)
	}
	x.contacts = kept
	return removed
}

func (x *Service) AllContacts() []emergency.Contact {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return append([]emergency.Contact(nil), x.contacts...)
}

func (x *Service) ContactsByCountry(country string) []emergency.Contact {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var matched []emergency.Contact
	for _, c := range x.contacts {
		if strings.EqualFold(c.Country, country) {
			matched = append(matched, c)
		}
	}
	return matched
}

// FallbackContacts returns the built-in directory used when nothing is
// configured
func (x *Service) FallbackContacts() []emergency.Contact {
	return fallbackContacts()
}

func (x *Service) MessageConfig() emergency.MessageConfig {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.msgCfg
}

func (x *Service) UpdateMessageConfig(cfg emergency.MessageConfig) error {
	if cfg.PrimaryMessage == "" {
		return goerr.New("primary message is required", goerr.T(errs.TagValidation))
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.msgCfg = cfg
	return nil
}

// GenerateMessage renders the crisis message: primary text, the contacts
// for the given country (falling back to the built-in list), the secondary
// text, and the disclaimer.
func (x *Service) GenerateMessage(country string) string {
	x.mu.RLock()
	cfg := x.msgCfg
	x.mu.RUnlock()

	var b strings.Builder
	b.WriteString(cfg.PrimaryMessage)

	if cfg.IncludeContacts {
		contacts := x.ContactsByCountry(country)
		if len(contacts) == 0 && country != "" {
			contacts = x.ContactsByCountry("International")
		}
		if len(contacts) == 0 {
			contacts = fallbackContacts()
		}

		b.WriteString("\n")
		for _, c := range contacts {
			b.WriteString(fmt.Sprintf("\n• %s: %s", c.Name, c.Number))
			if c.Description != "" {
				b.WriteString(" - " + c.Description)
			}
			if c.Available24x7 {
				b.WriteString(" (available 24/7)")
			}
			if c.Website != "" {
				b.WriteString("\n  " + c.Website)
			}
			if c.AdditionalInfo != "" {
				b.WriteString("\n  " + c.AdditionalInfo)
			}
		}
	}

	if cfg.SecondaryMessage != "" {
		b.WriteString("\n\n" + cfg.SecondaryMessage)
	}

	if cfg.IncludeDisclaimer {
		disclaimer := cfg.CustomDisclaimer
		if disclaimer == "" {
			disclaimer = defaultDisclaimer
		}
		b.WriteString("\n\n" + disclaimer)
	}

	return b.String()
}

// Validate reports configuration problems without failing. An empty result
// means the directory is usable.
func (x *Service) Validate() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var problems []string
	if x.msgCfg.PrimaryMessage == "" {
		problems = append(problems, "crisis message has no primary text")
	}
	seen := map[string]bool{}
	for i, c := range x.contacts {
		key := strings.ToLower(c.Name) + "/" + strings.ToLower(c.Country)
		if seen[key] {
			problems = append(problems, fmt.Sprintf("duplicate contact %q for country %q", c.Name, c.Country))
		}
		seen[key] = true
		if c.Name == "" {
			problems = append(problems, fmt.Sprintf("contact #%d has no name", i+1))
		}
		if c.Number == "" {
			problems = append(problems, fmt.Sprintf("contact %q has no number", c.Name))
		}
		if !c.Type.Validate() {
			problems = append(problems, fmt.Sprintf("contact %q has unknown resource type %q", c.Name, c.Type))
		}
	}
	return problems
}
