package ovation

// Survey is a partial Ovation survey document with the fields we keep
type Survey struct {
	ID              string    `json:"_id"`
	Company         Ref       `json:"company"`
	Location        Ref       `json:"location"`
	Customer        Ref       `json:"customer"`
	Rating          *float64  `json:"rating"`
	Feedback        *string   `json:"feedback"`
	Source          *string   `json:"source"`
	ResponseMessage *string   `json:"response_message"`
	ResponseBy      *string   `json:"response_by"`
	ResponseTime    Timestamp `json:"response_time"`
	CreatedAt       Timestamp `json:"created_at"`
	LocalCreatedAt  Timestamp `json:"local_created_at"`

	// Err is set when the document could not be decoded; only ID may be filled
	Err error `json:"-"`
}
