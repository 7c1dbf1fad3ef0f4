package domain

// ViewChoice is one visible choice button.
type ViewChoice struct {
	// Index is the position among visible choices, as accepted by Choose.
	Index    int    `json:"index"`
	Text     string `json:"text"`
	To       string `json:"to"`
	Resolved bool   `json:"resolved"`
}

// View is the pure projection of a traversal state onto a story graph.
type View struct {
	NodeID       string          `json:"nodeId"`
	Title        string          `json:"title"`
	Text         string          `json:"text"`
	Image        string          `json:"image,omitempty"`
	Choices      []ViewChoice    `json:"choices"`
	CanGoBack    bool            `json:"canGoBack"`
	CanGoForward bool            `json:"canGoForward"`
	Inventory    []InventoryItem `json:"inventory"`
	Terminal     bool            `json:"terminal"`
}
