package remote

// MaxPageSize is the largest page the query API serves.
const MaxPageSize = 1000

// Query is a statement for the query API together with the DTO versions it touches.
type Query struct {
	// Statement is the SELECT-style query text.
	Statement string
	// DTOs lists the DTO versions referenced, e.g. "UdoValue.9;UdoMeta.9".
	DTOs string
}

// Row is one decoded query result row. Numbers decode as json.Number.
type Row map[string]any

// Page is a single page of query results.
type Page struct {
	Rows        []Row
	CurrentPage int
	LastPage    int
	TotalCount  int
}

// Collection names a bulk data API collection and its DTO version.
type Collection struct {
	// Name is the collection path segment, e.g. "UdoValue".
	Name string
	// DTOs is the DTO version sent with mutations, e.g. "UdoValue.9".
	DTOs string
}

// MetaRef references a field definition by id.
type MetaRef struct {
	ID string `json:"id"`
}

// UdfValue is a single field value in a bulk payload.
type UdfValue struct {
	Meta  MetaRef `json:"meta"`
	Value string  `json:"value"`
}

// UpdateItem is one record of a bulk update.
type UpdateItem struct {
	ID        string     `json:"id"`
	UdfValues []UdfValue `json:"udfValues"`
}

type createItem struct {
	Meta      string     `json:"meta"`
	UdfValues []UdfValue `json:"udfValues"`
}

type deleteItem struct {
	ID string `json:"id"`
}

type queryRequest struct {
	Query string `json:"query"`
}

// pageResponse carries the paging counters loosely typed; some deployments
// send them as strings.
type pageResponse struct {
	Data             []Row `json:"data"`
	CurrentPage      any   `json:"currentPage"`
	LastPage         any   `json:"lastPage"`
	TotalObjectCount any   `json:"totalObjectCount"`
}
