package errors

import "errors"

var (
	ErrAdminNotFound        = errors.New("admin not found")
	ErrInvalidAdminPassword = errors.New("invalid username or password")
	ErrAdminDisabled        = errors.New("admin account disabled")
	ErrPasswordTooShort     = errors.New("password must be at least 6 characters")
	ErrPasswordMismatch     = errors.New("passwords do not match")

	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	ErrInvalidAction = errors.New("action must be 'add' or 'deduct'")
	ErrUnauthorized  = errors.New("unauthorized")

	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrTransactionProcessed = errors.New("transaction already processed")
	ErrNotWithdrawal        = errors.New("transaction is not a withdrawal")

	ErrTaskNotFound       = errors.New("task not found")
	ErrInvalidTaskPayload = errors.New("invalid task payload")
	ErrInvalidURL         = errors.New("url must be an absolute http(s) url")
	ErrInvalidChannel     = errors.New("telegram channel must be 5-32 characters of a-z, 0-9 or underscore")

	ErrUnknownProvider = errors.New("unknown ad provider")

	ErrUnknownCountry = errors.New("country not recognized")

	ErrPaymentMethodNotFound = errors.New("payment method not found")
	ErrInvalidMethodPayload  = errors.New("name and logo are required")

	ErrInvalidCommissionRate = errors.New("referral commission rate must be between 0 and 100")
	ErrSliderImageNotFound   = errors.New("slider image not found")

	ErrBotTokenEmpty   = errors.New("bot token cannot be empty")
	ErrBotTokenInvalid = errors.New("bot token is invalid")
	ErrNotifierOffline = errors.New("telegram notifier is offline")
	ErrEmptyBroadcast  = errors.New("message or image is required")
	ErrUploadFailed    = errors.New("image upload failed")
)
