package errors

import "fmt"

var (
	ErrWorkerPanic          = fmt.Errorf("worker panic")
	ErrInvalidPayload       = fmt.Errorf("invalid event payload")
	ErrClientNotInitialized = fmt.Errorf("transport client not initialized")
	ErrNotConnected         = fmt.Errorf("transport client not connected")
	ErrEmptyIdentity        = fmt.Errorf("endpoint identity is empty")
	ErrLoginFailed          = fmt.Errorf("login failed")
	ErrLogoutFailed         = fmt.Errorf("logout failed")
	ErrGroupJoinFailed      = fmt.Errorf("group join failed")
	ErrMembersFailed        = fmt.Errorf("group members enumeration failed")
	ErrSendFailed           = fmt.Errorf("message sending failed")
	ErrUnknownEndpoint      = fmt.Errorf("unknown endpoint")
	ErrEndpointInUse        = fmt.Errorf("endpoint already connected")
	ErrUnknownStore         = fmt.Errorf("unknown message store")
)
