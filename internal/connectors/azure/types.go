package azure

// Item is one object returned by the items API.
type Item struct {
	ObjectID      string `json:"objectId"`
	GitObjectType string `json:"gitObjectType"`
	CommitID      string `json:"commitId"`
	Path          string `json:"path"`
	IsFolder      bool   `json:"isFolder"`
	Size          int64  `json:"size,omitempty"`
	URL           string `json:"url"`
}

// ItemsResponse is the envelope of a recursive items listing.
type ItemsResponse struct {
	Count int    `json:"count"`
	Value []Item `json:"value"`
}

type errorResponse struct {
	Message   string `json:"message"`
	TypeKey   string `json:"typeKey"`
	ErrorCode int    `json:"errorCode"`
}
