package availability

import "spacebook/internal/pkg/apperror"

var (
	ErrValidation    = apperror.Validation("invalid availability block")
	ErrSpaceNotFound = apperror.New(apperror.KindNotFound, "SPACE_NOT_FOUND", "space not found")
	ErrBlockNotFound = apperror.New(apperror.KindNotFound, "AVAILABILITY_NOT_FOUND", "availability block not found")
	ErrDuplicate     = apperror.New(apperror.KindConflict, "AVAILABILITY_DUPLICATE", "an availability block with the same interval already exists")
)
