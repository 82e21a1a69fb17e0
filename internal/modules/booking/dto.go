package booking

type CreateBookingRequest struct {
	SpaceID   int64  `json:"space_id" binding:"required,gt=0"`
	Date      string `json:"date" binding:"required" validate:"isodate"`
	StartTime string `json:"start_time" binding:"required" validate:"clock"`
	EndTime   string `json:"end_time" binding:"required" validate:"clock"`
	Notes     string `json:"notes" validate:"max=2000"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ListQuery struct {
	Status  string `form:"status"`
	SpaceID int64  `form:"space_id"`
	Limit   int    `form:"limit" validate:"omitempty,min=1,max=200"`
	Offset  int    `form:"offset" validate:"omitempty,min=0"`
}
