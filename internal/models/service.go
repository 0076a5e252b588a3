package models

// ServiceDefinition is a third-party service entry from the services file,
// immutable after load.
type ServiceDefinition struct {
	ID                 string   `yaml:"id"`
	Name               string   `yaml:"name"`
	Description        string   `yaml:"description"`
	URL                string   `yaml:"url"`
	RelevantCategories []string `yaml:"relevant_categories"`
	Keywords           []string `yaml:"keywords"`
}

// ServiceRecommendation is the wire form of a matched service attached to a
// streamed task.
type ServiceRecommendation struct {
	ServiceID   string `json:"service_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Recommendation converts a definition to its wire form.
func (s ServiceDefinition) Recommendation() ServiceRecommendation {
	return ServiceRecommendation{
		ServiceID:   s.ID,
		Name:        s.Name,
		Description: s.Description,
		URL:         s.URL,
	}
}
