package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/stretchr/testify/assert"
)

func TestIsNotFound(t *testing.T) {
	wrapped := fmt.Errorf("failed to get object x: %w",
		awserr.New(s3.ErrCodeNoSuchKey, "no such key", nil))

	assert.True(t, IsNotFound(wrapped))
	assert.True(t, IsNotFound(awserr.New("NotFound", "not found", nil)))
	assert.False(t, IsNotFound(errors.New("connection reset")))
	assert.False(t, IsNotFound(nil))
}
