// Package catalog holds the fixed list of projects an applicant can apply for.
//
// The same catalog populates the project selection in every form and backs the
// deep-link lookup of the public application flow. It is not persisted.
package catalog

import "strings"

// Project is a single catalog entry.
//
// Eligible is false for placeholder entries that are shown on the projects
// page but cannot be applied for.
type Project struct {
	ID          string
	Name        string
	Description string
	Eligible    bool
}

var projects = []Project{
	{
		ID:          "ai-data-extraction",
		Name:        "AI Data Extraction",
		Description: "Develop and implement advanced AI models for efficient and accurate data extraction from various sources, enhancing data processing capabilities.",
		Eligible:    true,
	},
	{
		ID:          "machine-learning-enablement",
		Name:        "Machine Learning Enablement",
		Description: "Contribute to building and optimizing machine learning pipelines and applications, facilitating data-driven decision-making.",
		Eligible:    true,
	},
	{
		ID:          "genealogy",
		Name:        "Genealogy",
		Description: "Work on projects that leverage AI to analyze and interpret genealogical data, helping users uncover family histories and connections.",
		Eligible:    true,
	},
	{
		ID:          "natural-language-processing",
		Name:        "Natural Language Processing",
		Description: "Engage in developing NLP solutions for text analysis, sentiment analysis, language translation, and conversational AI interfaces.",
		Eligible:    true,
	},
	{
		ID:          "ai-enabled-customer-service",
		Name:        "AI-Enabled Customer Service",
		Description: "Design and implement AI solutions to improve customer service interactions, including chatbots and automated support systems.",
		Eligible:    true,
	},
	{
		ID:          "computer-vision",
		Name:        "Computer Vision",
		Description: "Participate in developing computer vision applications for image recognition, object detection, video analysis, and other visual AI tasks.",
		Eligible:    true,
	},
	{
		ID:          "autonomous-driving-technology",
		Name:        "Autonomous Driving Technology",
		Description: "Contribute to cutting-edge projects focused on AI algorithms for autonomous vehicles, including perception and decision-making.",
		Eligible:    true,
	},
	{
		ID:          "coming-soon-1",
		Name:        "Coming Soon",
		Description: "New exciting projects are in development. Stay tuned for more innovative AI solutions and opportunities.",
	},
	{
		ID:          "coming-soon-2",
		Name:        "Coming Soon",
		Description: "More groundbreaking projects will be announced soon. Join us to be part of the next wave of AI innovation.",
	},
}

// All returns every catalog entry in display order, placeholders included.
func All() []Project {
	out := make([]Project, len(projects))
	copy(out, projects)
	return out
}

// Eligible returns only the projects that accept applications.
func Eligible() []Project {
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if p.Eligible {
			out = append(out, p)
		}
	}
	return out
}

// ByID looks up an eligible project by its identifier.
func ByID(id string) (Project, bool) {
	id = strings.TrimSpace(id)
	for _, p := range projects {
		if p.Eligible && p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// ByName looks up an eligible project by display name, ignoring case.
func ByName(name string) (Project, bool) {
	name = strings.TrimSpace(name)
	for _, p := range projects {
		if p.Eligible && strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Project{}, false
}

// Resolve accepts either an identifier or a display name and returns the
// matching eligible project. Used by prompts where the operator may type
// either form.
func Resolve(s string) (Project, bool) {
	if p, ok := ByID(s); ok {
		return p, true
	}
	return ByName(s)
}
