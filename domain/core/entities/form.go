package entities

// FormType is one entry of the forms table: a form code and its display name.
type FormType struct {
	Form        string `json:"form" dynamodbav:"form"`
	FormName    string `json:"form_name,omitempty" dynamodbav:"form_name,omitempty"`
	FormText    string `json:"form_text,omitempty" dynamodbav:"form_text,omitempty"`
	SortOrder   string `json:"sort_order,omitempty" dynamodbav:"sort_order,omitempty"`
	Description string `json:"description,omitempty" dynamodbav:"description,omitempty"`
}

// FormTemplate holds the question and answer layout a year's forms are
// generated from. Templates are opaque documents to this service.
type FormTemplate map[string]interface{}
