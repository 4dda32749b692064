// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"
)

// ErrorContext carries input context for improving AWS API error messages.
type ErrorContext struct {
	Region    string
	Operation string // e.g., "create vpc", "run instances"
	Resource  string // e.g., "vpc", "elastic ip"
}

// friendlyError keeps the SDK error reachable through errors.As while
// presenting an actionable message.
type friendlyError struct {
	msg string
	err error
}

func (e *friendlyError) Error() string { return e.msg }
func (e *friendlyError) Unwrap() error { return e.err }

// FriendlyAWS wraps an AWS API error with a contextual, user-friendly message
// while preserving the original error for further inspection via errors.Is/As.
func FriendlyAWS(err error, ctx ErrorContext) error {
	if err == nil {
		return nil
	}

	op := nonEmpty(ctx.Operation, "request")
	region := nonEmpty(ctx.Region, "<default region>")
	resource := nonEmpty(ctx.Resource, "resources")

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%s in %s: %w", op, region, err)
	}

	code := apiErr.ErrorCode()
	switch {
	case isCredentialCode(code):
		return &friendlyError{
			msg: fmt.Sprintf("%s in %s: AWS rejected the credentials (%s). Check AWS_ACCESS_KEYID and AWS_ACCESS_SECRET", op, region, code),
			err: err,
		}

	case code == "UnauthorizedOperation" || strings.HasPrefix(code, "AccessDenied"):
		return &friendlyError{
			msg: fmt.Sprintf("%s in %s: not permitted (%s). The IAM identity needs permission to manage %s", op, region, code, resource),
			err: err,
		}

	case strings.HasSuffix(code, "LimitExceeded") || strings.HasSuffix(code, "QuotaExceeded"):
		return &friendlyError{
			msg: fmt.Sprintf("%s in %s: account limit reached for %s (%s). Release unused %s or request a quota increase", op, region, resource, code, resource),
			err: err,
		}

	case strings.Contains(code, "AlreadyExists") || strings.Contains(code, "Duplicate") || code == "BucketAlreadyOwnedByYou":
		return &friendlyError{
			msg: fmt.Sprintf("%s in %s: %s already exists (%s). Run 'skhctl aws down' or change the name prefix", op, region, resource, code),
			err: err,
		}
	}

	return fmt.Errorf("%s in %s: %w", op, region, err)
}

func isCredentialCode(code string) bool {
	switch code {
	case "AuthFailure", "InvalidClientTokenId", "SignatureDoesNotMatch",
		"UnrecognizedClientException", "ExpiredToken", "InvalidAccessKeyId":
		return true
	}
	return false
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
