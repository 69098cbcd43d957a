package entities

type Category string

const (
	CategoryBackend       Category = "backend"
	CategoryFrontend      Category = "frontend"
	CategoryFullstack     Category = "fullstack"
	CategoryMobile        Category = "mobile"
	CategoryData          Category = "data"
	CategoryAI            Category = "ai"
	CategoryDevOps        Category = "devops"
	CategorySecurity      Category = "security"
	CategoryEmbedded      Category = "embedded"
	CategoryGame          Category = "game"
	CategoryQA            Category = "qa"
	CategoryUncategorized Category = "uncategorized"
)
