package entities

// Status ids and names used by the certification workflow.
const (
	StatusIDNotStarted  = 1
	StatusIDInProgress  = 2
	StatusIDProvisional = 3
	StatusIDFinal       = 4

	StatusInProgress  = "In Progress"
	StatusProvisional = "Provisional Data Certified and Submitted"
	StatusFinal       = "Final Data Certified and Submitted"
)

// FormStatus is the status record of one state form.
type FormStatus struct {
	StateForm        string `json:"state_form" dynamodbav:"state_form"`
	State            string `json:"state_id,omitempty" dynamodbav:"state_id,omitempty"`
	Year             int    `json:"year,omitempty" dynamodbav:"year,omitempty"`
	Quarter          int    `json:"quarter,omitempty" dynamodbav:"quarter,omitempty"`
	Form             string `json:"form,omitempty" dynamodbav:"form,omitempty"`
	FormName         string `json:"form_name,omitempty" dynamodbav:"form_name,omitempty"`
	Status           string `json:"status,omitempty" dynamodbav:"status,omitempty"`
	StatusID         int    `json:"status_id,omitempty" dynamodbav:"status_id,omitempty"`
	StatusDate       string `json:"status_date,omitempty" dynamodbav:"status_date,omitempty"`
	StatusModifiedBy string `json:"status_modified_by,omitempty" dynamodbav:"status_modified_by,omitempty"`
	LastModified     string `json:"last_modified,omitempty" dynamodbav:"last_modified,omitempty"`
	LastModifiedBy   string `json:"last_modified_by,omitempty" dynamodbav:"last_modified_by,omitempty"`
	CreatedBy        string `json:"created_by,omitempty" dynamodbav:"created_by,omitempty"`
	CreatedDate      string `json:"created_date,omitempty" dynamodbav:"created_date,omitempty"`
	StateComments    string `json:"state_comments,omitempty" dynamodbav:"state_comments,omitempty"`
	NotApplicable    bool   `json:"not_applicable" dynamodbav:"not_applicable"`
}

// IsCertified reports whether the form is provisionally or finally certified.
func (s FormStatus) IsCertified() bool {
	return s.StatusID == StatusIDProvisional || s.StatusID == StatusIDFinal
}
