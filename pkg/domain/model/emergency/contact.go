package emergency

// ResourceType classifies an emergency resource
type ResourceType string

const (
	ResourceCrisisHelpline       ResourceType = "crisis_helpline"
	ResourceEmergencyServices    ResourceType = "emergency_services"
	ResourceTextLine             ResourceType = "text_line"
	ResourceChatService          ResourceType = "chat_service"
	ResourceProfessionalReferral ResourceType = "professional_referral"
)

func (x ResourceType) String() string {
	return string(x)
}

func (x ResourceType) Validate() bool {
	switch x {
	case ResourceCrisisHelpline, ResourceEmergencyServices, ResourceTextLine,
		ResourceChatService, ResourceProfessionalReferral:
		return true
	}
	return false
}

// Contact is one helpline or emergency service entry
type Contact struct {
	Name           string       `json:"name"`
	Number         string       `json:"number"`
	Description    string       `json:"description"`
	Country        string       `json:"country"`
	Type           ResourceType `json:"resource_type"`
	Available24x7  bool         `json:"available_24_7"`
	Website        string       `json:"website,omitempty"`
	AdditionalInfo string       `json:"additional_info,omitempty"`
}

// MessageConfig controls how the rendered crisis message is assembled
type MessageConfig struct {
	PrimaryMessage    string `json:"primary_message"`
	SecondaryMessage  string `json:"secondary_message,omitempty"`
	IncludeContacts   bool   `json:"include_contacts"`
	IncludeDisclaimer bool   `json:"include_disclaimer"`
	CustomDisclaimer  string `json:"custom_disclaimer,omitempty"`
}
