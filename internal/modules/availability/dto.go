package availability

type ListQuery struct {
	SpaceID int64  `form:"space_id" binding:"required,gt=0"`
	Date    string `form:"date" binding:"required" validate:"isodate"`
}

type CreateBlockRequest struct {
	SpaceID     int64  `json:"space_id" binding:"required,gt=0"`
	Date        string `json:"date" binding:"required" validate:"isodate"`
	StartTime   string `json:"start_time" binding:"required" validate:"clock"`
	EndTime     string `json:"end_time" binding:"required" validate:"clock"`
	IsAvailable *bool  `json:"is_available"`
}

// UpdateBlockRequest patches a block; nil fields keep their value.
type UpdateBlockRequest struct {
	Date        *string `json:"date" validate:"omitempty,isodate"`
	StartTime   *string `json:"start_time" validate:"omitempty,clock"`
	EndTime     *string `json:"end_time" validate:"omitempty,clock"`
	IsAvailable *bool   `json:"is_available"`
}
