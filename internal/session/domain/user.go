package domain

// User is the cached identity the rest of the client reads synchronously.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
