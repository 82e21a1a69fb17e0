package catalog

import "spacebook/internal/pkg/apperror"

var (
	ErrSpaceNotFound    = apperror.New(apperror.KindNotFound, "SPACE_NOT_FOUND", "space not found")
	ErrLocationNotFound = apperror.New(apperror.KindNotFound, "LOCATION_NOT_FOUND", "location not found")
)
