package domain

// Category is an admin-managed post category (medical, tools, books, ...).
type Category struct {
	CategoryID  string `json:"id" dynamodbav:"category_id"`
	Name        string `json:"name" dynamodbav:"name"`
	Description string `json:"description" dynamodbav:"description"`
}

type CategoryInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}
