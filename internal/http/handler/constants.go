package handler

import "time"

const (
	paramID        = "id"
	paramCommentID = "commentId"
	paramPhotoID   = "photoId"
	paramToken     = "token"

	formEventID = "eventId"
	formFiles   = "files"
	formFile    = "file"
	formType    = "type"
	formNotes   = "notes"

	queryChurchID = "churchId"
	queryStatus   = "status"
	queryRole     = "role"

	downloadURLTTL      = 10 * time.Minute
	zipContentType      = "application/zip"
	zipFilenameFallback = "photos"
	maxNotesLength      = 1000
)

const (
	msgContentTypeJSONRequired = "Content-Type must be application/json"
	msgInvalidRequestBody      = "Invalid request body"
	msgInvalidID               = "Invalid id"
	msgAuthRequired            = "Authentication required"
	msgEventNotFound           = "Event not found"
	msgProjectNotFound         = "Project not found"
	msgMediaNotFound           = "Media not found"
	msgCommentNotFound         = "Comment not found"
	msgPhotoNotFound           = "Photo not found"
	msgNotAuthorizedMedia      = "Not authorized to access this media"
	msgNotAuthorizedComment    = "Not authorized to delete this comment"
	msgNotAuthorizedPhoto      = "Photo does not belong to this event"
	msgEventIDRequired         = "eventId is required"
	msgNoFilesProvided         = "No files provided"
	msgFileRequired            = "file is required"
	msgInvalidMediaType        = "type must be VISUAL or VIDEO"
	msgPhotoDecision           = "status must be APPROVED or REJECTED"
	msgNotesTooLong            = "notes must not exceed 1000 characters"
	msgNotApproved             = "Photo is not approved"
	msgNoApprovedPhotos        = "No approved photos to download"
	msgProjectTokenNoDownload  = "Project tokens cannot download event photos"
	msgInvalidDate             = "date must be an RFC3339 timestamp"
	msgInvalidEventStatus      = "invalid event status"
	msgInvalidRole             = "invalid role"
	msgInvalidUserStatus       = "invalid user status"
	msgCannotDemoteSelf        = "Admins cannot change their own role or status"
	msgFailedSignURL           = "Failed to generate download URL"
	msgFailedStoreFile         = "Failed to store file"
	msgFailedReadFile          = "Failed to read file"
	msgFailedIssueCSRF         = "Failed to issue CSRF token"
	msgInvalidSince            = "since must be an RFC3339 timestamp"
	msgInvalidLimit            = "limit must be a positive integer"
)
