package models

// Event is a ticketed event.
type Event struct {
	ID          string  `json:"_id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Location    string  `json:"location,omitempty"`
	Date        string  `json:"date,omitempty"`
	Time        string  `json:"time,omitempty"`
	Price       float64 `json:"price"`
	Seats       int     `json:"seats,omitempty"`
	Image       string  `json:"image,omitempty"`
	Organizer   string  `json:"organizer,omitempty"`
}

// Blog is a published article.
type Blog struct {
	ID        string   `json:"_id,omitempty"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Author    string   `json:"author,omitempty"`
	Image     string   `json:"image,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt string   `json:"createdAt,omitempty"`
}

// Contact is a message left through the public contact form.
type Contact struct {
	ID        string `json:"_id,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject,omitempty"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Order is a ticket purchase.
type Order struct {
	ID        string  `json:"_id,omitempty"`
	EventID   string  `json:"eventId"`
	Email     string  `json:"email"`
	Quantity  int     `json:"quantity"`
	Total     float64 `json:"total"`
	Status    string  `json:"status,omitempty"`
	CreatedAt string  `json:"createdAt,omitempty"`
}
