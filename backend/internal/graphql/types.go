package graphql

import "encoding/json"

// Request is a GraphQL request after the transport envelope is unwrapped.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

// Response is the GraphQL response envelope. Data is present, possibly
// null, once execution started; request errors carry no data key.
type Response struct {
	Data   interface{} `json:"data,omitempty"`
	Errors []Error     `json:"errors,omitempty"`

	executed bool
}

func (r Response) MarshalJSON() ([]byte, error) {
	type envelope struct {
		Data   interface{} `json:"data"`
		Errors []Error     `json:"errors,omitempty"`
	}
	if r.executed {
		return json.Marshal(envelope{Data: r.Data, Errors: r.Errors})
	}
	return json.Marshal(struct {
		Errors []Error `json:"errors,omitempty"`
	}{Errors: r.Errors})
}

// Error is a GraphQL error in the response format.
type Error struct {
	Message    string                 `json:"message"`
	Locations  []Location             `json:"locations,omitempty"`
	Path       []interface{}          `json:"path,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

// Location is a position in the request document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}
