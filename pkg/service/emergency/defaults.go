package emergency

import "github.com/mindwell-lab/serene/pkg/domain/model/emergency"

const defaultDisclaimer = "This screening tool is not a substitute for professional medical advice, diagnosis, or treatment."

func defaultMessageConfig() emergency.MessageConfig {
	return emergency.MessageConfig{
		PrimaryMessage: "I'm very concerned about what you've shared with me. Your safety is the most important thing right now.\n\nPlease reach out for immediate support:",
		SecondaryMessage: "You don't have to go through this alone. There are people who want to help you, " +
			"and things can get better. Please reach out to one of these resources right away.",
		IncludeContacts:   true,
		IncludeDisclaimer: true,
		CustomDisclaimer:  defaultDisclaimer,
	}
}

func fallbackContacts() []emergency.Contact {
	return []emergency.Contact{
		{
			Name:          "Crisis Helpline",
			Number:        "988",
			Description:   "National Crisis Helpline",
			Country:       "US",
			Type:          emergency.ResourceCrisisHelpline,
			Available24x7: true,
			Website:       "https://988lifeline.org",
		},
		{
			Name:          "Emergency Services",
			Number:        "911",
			Description:   "Emergency medical and police services",
			Country:       "US",
			Type:          emergency.ResourceEmergencyServices,
			Available24x7: true,
		},
		{
			Name:           "Crisis Text Line",
			Number:         "741741",
			Description:    "Text HOME to 741741 for crisis support",
			Country:        "US",
			Type:           emergency.ResourceTextLine,
			Available24x7:  true,
			Website:        "https://crisistextline.org",
			AdditionalInfo: "Text HOME to start conversation",
		},
		{
			Name:          "International Crisis Helpline",
			Number:        "+1-800-273-8255",
			Description:   "International crisis support",
			Country:       "International",
			Type:          emergency.ResourceCrisisHelpline,
			Available24x7: true,
		},
	}
}
