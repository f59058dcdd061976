package emergency_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	model "github.com/mindwell-lab/serene/pkg/domain/model/emergency"
	"github.com/mindwell-lab/serene/pkg/service/emergency"
)

func TestDefaultsWithoutFile(t *testing.T) {
	svc, err := emergency.New(context.Background(), "")
	gt.NoError(t, err)

	gt.Array(t, svc.AllContacts()).Length(0)
	gt.Array(t, svc.FallbackContacts()).Longer(0)
	gt.Array(t, svc.Validate()).Length(0)
}

func TestContactCRUD(t *testing.T) {
	svc, err := emergency.New(context.Background(), "")
	gt.NoError(t, err)

	gt.NoError(t, svc.AddContact(model.Contact{
		Name:    "Samaritans",
		Number:  "116 123",
		Country: "UK",
		Type:    model.ResourceCrisisHelpline,
	}))
	gt.NoError(t, svc.AddContact(model.Contact{
		Name:    "Emergency",
		Number:  "999",
		Country: "UK",
		Type:    model.ResourceEmergencyServices,
	}))

	gt.Array(t, svc.AllContacts()).Length(2)
	gt.Array(t, svc.ContactsByCountry("uk")).Length(2)
	gt.Array(t, svc.ContactsByCountry("US")).Length(0)

	gt.True(t, svc.RemoveContact("samaritans", "UK"))
	gt.False(t, svc.RemoveContact("samaritans", "UK"))
	gt.Array(t, svc.AllContacts()).Length(1)
}

func TestAddContactValidation(t *testing.T) {
	svc, err := emergency.New(context.Background(), "")
	gt.NoError(t, err)

	gt.Error(t, svc.AddContact(model.Contact{Name: "x"}))
	gt.Error(t, svc.AddContact(model.Contact{
		Name:    "x",
		Number:  "1",
		Country: "US",
		Type:    model.ResourceType("carrier_pigeon"),
	}))
}

func TestGenerateMessage(t *testing.T) {
	svc, err := emergency.New(context.Background(), "")
	gt.NoError(t, err)

	msg := svc.GenerateMessage("")
	gt.True(t, strings.Contains(msg, "988"))
	gt.True(t, strings.Contains(msg, "not a substitute for professional medical advice"))

	gt.NoError(t, svc.AddContact(model.Contact{
		Name:    "Samaritans",
		Number:  "116 123",
		Country: "UK",
		Type:    model.ResourceCrisisHelpline,
	}))

	// Country filter picks the UK entry, not the US fallbacks
	msg = svc.GenerateMessage("UK")
	gt.True(t, strings.Contains(msg, "116 123"))
	gt.False(t, strings.Contains(msg, "988"))

	// Unknown country falls back to the built-in list
	msg = svc.GenerateMessage("FR")
	gt.True(t, strings.Contains(msg, "988"))
}

func TestSaveAndReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "emergency.json")

	svc, err := emergency.New(ctx, path)
	gt.NoError(t, err)
	gt.NoError(t, svc.AddContact(model.Contact{
		Name:    "Lifeline",
		Number:  "13 11 14",
		Country: "AU",
		Type:    model.ResourceCrisisHelpline,
	}))
	gt.NoError(t, svc.UpdateMessageConfig(model.MessageConfig{
		PrimaryMessage:  "Please get help now.",
		IncludeContacts: true,
	}))
	gt.NoError(t, svc.Save(ctx))

	_, err = os.Stat(path)
	gt.NoError(t, err)

	reloaded, err := emergency.New(ctx, path)
	gt.NoError(t, err)
	gt.Array(t, reloaded.AllContacts()).Length(1)
	gt.Equal(t, reloaded.MessageConfig().PrimaryMessage, "Please get help now.")

	msg := reloaded.GenerateMessage("AU")
	gt.True(t, strings.Contains(msg, "13 11 14"))
	// disclaimer disabled in the saved config
	gt.False(t, strings.Contains(msg, "not a substitute"))
}

func TestValidateFindsProblems(t *testing.T) {
	svc, err := emergency.New(context.Background(), "")
	gt.NoError(t, err)

	gt.NoError(t, svc.AddContact(model.Contact{
		Name:    "Helpline",
		Number:  "111",
		Country: "US",
		Type:    model.ResourceCrisisHelpline,
	}))
	gt.NoError(t, svc.AddContact(model.Contact{
		Name:    "helpline",
		Number:  "222",
		Country: "us",
		Type:    model.ResourceCrisisHelpline,
	}))

	problems := svc.Validate()
	gt.Array(t, problems).Longer(0)
	gt.Array(t, problems).Any(func(p string) bool {
		return strings.Contains(p, "duplicate contact")
	})
}
