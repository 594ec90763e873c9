package catalog

import "github.com/okian/prepdeck/internal/domain/model"

func group(weight float64, keywords ...string) model.KeywordGroup {
	return model.KeywordGroup{Keywords: keywords, Weight: weight}
}

// Default returns a fresh copy of the built-in catalog.
func Default() *Catalog {
	return &Catalog{
		Version: BuiltinVersion,
		Profiles: []model.JobProfile{
			{Title: "Software Engineer", Groups: []model.KeywordGroup{
				group(1.0, "software", "developer", "programming", "code", "engineering"),
				group(0.8, "python", "java", "javascript", "c++", "golang", "rust"),
				group(0.7, "algorithms", "data structures", "system design"),
				group(0.5, "git", "agile", "scrum", "ci/cd"),
			}},
			{Title: "Frontend Developer", Groups: []model.KeywordGroup{
				group(1.0, "frontend", "front-end", "ui", "ux", "user interface"),
				group(0.9, "react", "angular", "vue", "typescript", "javascript"),
				group(0.8, "html", "css", "sass", "tailwind", "bootstrap"),
				group(0.6, "responsive", "accessibility", "web"),
			}},
			{Title: "Backend Developer", Groups: []model.KeywordGroup{
				group(1.0, "backend", "back-end", "server", "api", "microservices"),
				group(0.9, "node", "python", "java", "golang", "rust", "php"),
				group(0.8, "database", "sql", "nosql", "mongodb", "postgresql"),
				group(0.7, "rest", "graphql", "authentication", "security"),
			}},
			{Title: "Full Stack Developer", Groups: []model.KeywordGroup{
				group(1.0, "full stack", "fullstack", "full-stack"),
				group(0.8, "frontend", "backend", "react", "node", "database"),
				group(0.6, "api", "deployment", "devops"),
			}},
			{Title: "Data Scientist", Groups: []model.KeywordGroup{
				group(1.0, "data science", "machine learning", "ml", "ai", "artificial intelligence"),
				group(0.9, "python", "r", "pandas", "numpy", "scikit-learn", "tensorflow", "pytorch"),
				group(0.7, "statistics", "modeling", "visualization", "jupyter"),
				group(0.8, "deep learning", "neural network", "nlp"),
			}},
			{Title: "Data Analyst", Groups: []model.KeywordGroup{
				group(1.0, "data analyst", "analytics", "business intelligence", "bi"),
				group(0.9, "sql", "excel", "tableau", "power bi", "looker"),
				group(0.7, "python", "r", "statistics", "visualization"),
				group(0.6, "reporting", "dashboard", "insights"),
			}},
			{Title: "DevOps Engineer", Groups: []model.KeywordGroup{
				group(1.0, "devops", "sre", "site reliability", "infrastructure"),
				group(0.9, "docker", "kubernetes", "k8s", "terraform", "ansible"),
				group(0.8, "aws", "azure", "gcp", "cloud"),
				group(0.7, "ci/cd", "jenkins", "github actions", "monitoring"),
			}},
			{Title: "Product Manager", Groups: []model.KeywordGroup{
				group(1.0, "product manager", "product management", "pm"),
				group(0.8, "roadmap", "strategy", "stakeholder", "requirements"),
				group(0.7, "agile", "scrum", "user stories", "backlog"),
				group(0.6, "analytics", "metrics", "kpi", "okr"),
			}},
			{Title: "UI/UX Designer", Groups: []model.KeywordGroup{
				group(1.0, "ui", "ux", "user experience", "user interface", "design"),
				group(0.9, "figma", "sketch", "adobe xd", "prototype"),
				group(0.8, "wireframe", "mockup", "user research", "usability"),
				group(0.6, "accessibility", "interaction design"),
			}},
			{Title: "Machine Learning Engineer", Groups: []model.KeywordGroup{
				group(1.0, "machine learning", "ml engineer", "deep learning"),
				group(0.9, "tensorflow", "pytorch", "keras", "mlops"),
				group(0.8, "python", "model deployment", "feature engineering"),
				group(0.7, "computer vision", "nlp", "recommendation systems"),
			}},
			{Title: "Cloud Architect", Groups: []model.KeywordGroup{
				group(1.0, "cloud architect", "solutions architect", "cloud"),
				group(0.9, "aws", "azure", "gcp", "multi-cloud"),
				group(0.8, "architecture", "scalability", "security", "networking"),
				group(0.7, "serverless", "microservices", "containers"),
			}},
			{Title: "Cybersecurity Analyst", Groups: []model.KeywordGroup{
				group(1.0, "security", "cybersecurity", "infosec", "information security"),
				group(0.9, "penetration testing", "vulnerability", "siem", "soc"),
				group(0.7, "compliance", "risk assessment", "encryption"),
				group(0.6, "firewall", "incident response", "threat"),
			}},
		},
	}
}
