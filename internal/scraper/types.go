package scraper

// Listing represents one scraped classified-ad listing
type Listing struct {
	ProductID    int64  `json:"product_id"`
	Title        string `json:"title"`
	Price        int    `json:"price"`
	ListedDate   string `json:"listed_date"`
	Link         string `json:"link"`
	Category     string `json:"category"`
	Location     string `json:"location,omitempty"`
	Delivery     string `json:"delivery,omitempty"`
	Image        string `json:"image"`
	SearchedDate int    `json:"searched_date"`
	Keyword      string `json:"keyword"`
}

// Field holds the result of extracting one field across a whole listing batch.
// Absent marks a batch-shape failure: the selector matched nothing anywhere,
// so the field is uniformly missing rather than failed per node.
type Field[T any] struct {
	Values []T
	Absent bool
}

// AbsentField returns the uniform empty-field marker for a batch
func AbsentField[T any]() Field[T] {
	return Field[T]{Absent: true}
}

// At returns the value for listing index i, or the zero value when the
// field is absent for the batch or the index is out of range
func (f Field[T]) At(i int) T {
	var zero T
	if f.Absent || i < 0 || i >= len(f.Values) {
		return zero
	}
	return f.Values[i]
}

// Len returns the number of extracted values
func (f Field[T]) Len() int {
	return len(f.Values)
}

// Selectors contains CSS selectors for the listing page markup. The class
// names are a versioned external schema owned by the site; extraction must
// tolerate any of them disappearing without failing the batch.
type Selectors struct {
	Listing   string
	TitleLink string
	Subject   string
	Price     string
	Time      string
	Category  string
	Location  string
	Badges    string
	Image     string
	PagerLast string
}

// DefaultSelectors returns the selectors for the current page template
func DefaultSelectors() Selectors {
	return Selectors{
		Listing:   "div.contentArea",
		TitleLink: "h3.item-title a",
		Subject:   "a.subject",
		Price:     "span.price-value",
		Time:      "div.time",
		Category:  "div.category",
		Location:  "section.reLiSection.cityname",
		Badges:    "section.reLiSection.badges",
		Image:     "section.reLiSection.imageBox a img",
		PagerLast: "a.ad-list-pager-item-last",
	}
}
