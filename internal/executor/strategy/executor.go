package strategy

import (
	"context"
	"fmt"

	"email-datagen/internal/entity"
)

// DispatchRequest is one firing handed to a strategy. ConfigName is already resolved.
type DispatchRequest struct {
	ScheduleID string
	Recipients []string
	Count      int
	ConfigName string
	Payload    entity.EmailPayload
}

// EmailDispatchStrategy sends one email type.
type EmailDispatchStrategy interface {
	Dispatch(ctx context.Context, req *DispatchRequest) (*entity.DispatchResult, error)
	GetType() entity.EmailType
}

// DispatchError reports a send that could not be performed.
type DispatchError struct {
	EmailType entity.EmailType
	Err       error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s dispatch failed: %v", e.EmailType, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}
