package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/VisionGate/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// New / Wrap
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"missing image", errors.ErrCodeMissingImage, "No image provided"},
		{"invalid param", errors.CodeInvalidParam, "model id must not be empty"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
			assert.NotEmpty(t, ae.Stack)
		})
	}
}

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "ignored"))
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("connection refused")
	ae := errors.Wrap(root, errors.ErrCodeBackendUnavailable, "backend unavailable")

	require.NotNil(t, ae)
	assert.True(t, stderrors.Is(ae, root))
	assert.Equal(t, root, ae.Unwrap())
}

func TestWrap_UnknownCodePreservesOriginal(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeModelNotFound, "Model not found")
	outer := errors.Wrap(inner, errors.CodeUnknown, "describe failed")

	assert.Equal(t, errors.ErrCodeModelNotFound, outer.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Rendering
// ─────────────────────────────────────────────────────────────────────────────

func TestError_Format(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeBackendUnavailable, "backend unavailable")
	assert.Equal(t, "[GW_003] backend unavailable", ae.Error())
	assert.Equal(t, "[GW_003] backend unavailable: request timed out", ae.WithDetail("request timed out").Error())
}

func TestPublicMessage_NeverIncludesCause(t *testing.T) {
	t.Parallel()

	ae := errors.BackendUnavailable("connection failed", stderrors.New("dial tcp 10.0.0.7:8080: secret-host"))
	assert.Equal(t, "backend unavailable: connection failed", ae.PublicMessage())
	assert.NotContains(t, ae.PublicMessage(), "secret-host")

	var nilErr *errors.AppError
	assert.Empty(t, nilErr.PublicMessage())
}

func TestWithDetail_DoesNotMutateReceiver(t *testing.T) {
	t.Parallel()

	base := errors.Internal("boom")
	withDetail := base.WithDetail("extra")

	assert.Empty(t, base.Detail)
	assert.Equal(t, "extra", withDetail.Detail)

	var nilErr *errors.AppError
	assert.Nil(t, nilErr.WithDetail("x"))
	assert.Nil(t, nilErr.WithCause(stderrors.New("x")))
}

// ─────────────────────────────────────────────────────────────────────────────
// Gateway factories
// ─────────────────────────────────────────────────────────────────────────────

func TestGatewayFactories(t *testing.T) {
	t.Parallel()

	missing := errors.MissingImage()
	assert.Equal(t, errors.ErrCodeMissingImage, missing.Code)
	assert.Equal(t, "No image provided", missing.PublicMessage())
	assert.Equal(t, 400, errors.HTTPStatusForCode(missing.Code))

	notFound := errors.ModelNotFound("model_9")
	assert.Equal(t, "Model not found", notFound.PublicMessage())
	assert.Contains(t, notFound.Cause.Error(), "model_9")
	assert.Equal(t, 404, errors.HTTPStatusForCode(notFound.Code))
	assert.True(t, errors.IsNotFound(notFound))

	backend := errors.BackendUnavailable("unexpected status 503", nil)
	assert.Equal(t, 500, errors.HTTPStatusForCode(backend.Code))
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain helpers
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode_TraversesWrappedChain(t *testing.T) {
	t.Parallel()

	inner := errors.MissingImage()
	wrapped := fmt.Errorf("handler: %w", inner)

	assert.True(t, errors.IsCode(wrapped, errors.ErrCodeMissingImage))
	assert.False(t, errors.IsCode(wrapped, errors.ErrCodeModelNotFound))
	assert.False(t, errors.IsCode(nil, errors.ErrCodeMissingImage))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsNotFound(errors.NotFound("x")))
	assert.True(t, errors.IsNotFound(fmt.Errorf("wrap: %w", errors.ModelNotFound("m"))))
	assert.False(t, errors.IsNotFound(errors.Internal("x")))
	assert.False(t, errors.IsNotFound(stderrors.New("plain")))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeMissingImage, errors.GetCode(errors.MissingImage()))
}

func TestAsAppError(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.AsAppError(nil))

	ae := errors.AsAppError(stderrors.New("db exploded"))
	require.NotNil(t, ae)
	assert.Equal(t, errors.CodeInternal, ae.Code)
	assert.Equal(t, "internal server error", ae.PublicMessage())

	orig := errors.ModelNotFound("m")
	assert.Same(t, orig, errors.AsAppError(fmt.Errorf("w: %w", orig)))
}

//Personal.AI order the ending
