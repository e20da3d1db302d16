package domain

// Category classifies complaints; maintained server-side.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

// Status is a server-defined lifecycle state for complaints.
type Status struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Terminal bool   `json:"terminal"`
	SortRank int    `json:"sort_rank"`
}

// Priority is a server-defined urgency level.
type Priority struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Weight   int    `json:"weight"`
	IsActive bool   `json:"is_active"`
}

// Department represents a high-level organizational unit.
type Department struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}
