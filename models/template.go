// models/template.go - Statically defined workspace templates
package models

type TemplateTask struct {
	Title       string
	Description string
	Priority    TaskPriority
}

type Template struct {
	Tasks     []TemplateTask
	Checklist []string
}

var templates = map[string]Template{
	"SIH": {
		Tasks: []TemplateTask{
			{Title: "Problem Statement Analysis", Description: "Deep dive into the SIH problem statement requirements.", Priority: TaskPriorityHigh},
			{Title: "PPT Preparation (Internal)", Description: "Create the initial pitch deck for internal rounds.", Priority: TaskPriorityMedium},
			{Title: "UI/UX Wireframing", Description: "Design Figma wireframes for the solution.", Priority: TaskPriorityMedium},
			{Title: "MVP Core Backend", Description: "Set up Express API and basic DB schema.", Priority: TaskPriorityHigh},
		},
		Checklist: []string{
			"Problem statement selected",
			"Team members registered on SIH portal",
			"Abstract submitted",
			"Internal college nomination received",
			"Mentor selected",
		},
	},
	"Generic Hackathon": {
		Tasks: []TemplateTask{
			{Title: "Repo Initialization", Description: "Set up GitHub repo and CI/CD basics.", Priority: TaskPriorityLow},
			{Title: "Landing Page v1", Description: "Build a basic landing page to show the concept.", Priority: TaskPriorityMedium},
			{Title: "Pitch Deck v1", Description: "Outline the problem, solution, and tech stack.", Priority: TaskPriorityHigh},
		},
		Checklist: []string{
			"Git repo created",
			"Readme updated",
			"Discord/Slack joined",
			"Initial pitch ready",
		},
	},
	"SaaS MVP": {
		Tasks: []TemplateTask{
			{Title: "Auth Implementation", Description: "Firebase or JWT setup.", Priority: TaskPriorityHigh},
			{Title: "Subscription Model Plan", Description: "Decide on pricing tiers.", Priority: TaskPriorityMedium},
			{Title: "Dashboard UI", Description: "Main user interface construction.", Priority: TaskPriorityMedium},
		},
		Checklist: []string{
			"Domain selected",
			"Logo designed",
			"Database connected",
		},
	},
}

// GetTemplate looks up a template by its exact name.
func GetTemplate(name string) (Template, bool) {
	tpl, ok := templates[name]
	return tpl, ok
}

// TemplateNames lists the available template names.
func TemplateNames() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	return names
}
