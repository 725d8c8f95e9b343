package complaint

type CreateComplaintRequest struct {
	Title          string  `json:"title" validate:"required,max=255"`
	Description    string  `json:"description" validate:"required,max=5000"`
	AdditionalData *string `json:"additional_data"`
}

type UpdateComplaintRequest struct {
	Status         Status  `json:"status" validate:"required,oneof=PENDING IN_PROGRESS RESOLVED CLOSED REJECTED"`
	Response       *string `json:"response" validate:"omitempty,max=5000"`
	AdditionalData *string `json:"additional_data"`
}

type ListFilter struct {
	Status   Status
	Page     int
	PageSize int
}

type ListResponse struct {
	Complaints []*Complaint `json:"complaints"`
	Page       int          `json:"page"`
	PageSize   int          `json:"size"`
	Total      int64        `json:"total"`
}

type NeedingResponse struct {
	Complaints []*Complaint `json:"complaints"`
}
